package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateline/stateline-api/services"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
)

func newNexusService() *services.NexusService {
	return services.NewNexusService(stateconfig.NewRegistry())
}

func activity(activityType business.ActivityType, stateCode string, start time.Time, end *time.Time) business.BusinessActivity {
	return business.BusinessActivity{
		ActivityType: activityType,
		StateCode:    stateCode,
		StartDate:    start,
		EndDate:      end,
	}
}

func TestNexusService_CheckEconomicNexus(t *testing.T) {
	svc := newNexusService()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name             string
		stateCode        string
		salesAmount      string
		transactionCount int64
		wantNexus        bool
		wantReason       string
	}{
		{
			name:      "california sales at threshold",
			stateCode: "CA", salesAmount: "500000", transactionCount: 0,
			wantNexus: true, wantReason: "threshold_met",
		},
		{
			name:      "california sales below threshold",
			stateCode: "CA", salesAmount: "499999.99", transactionCount: 0,
			wantNexus: false, wantReason: "below_threshold",
		},
		{
			name:      "new york transaction count alone",
			stateCode: "NY", salesAmount: "10000", transactionCount: 100,
			wantNexus: true, wantReason: "threshold_met",
		},
		{
			name:      "california has no transaction threshold",
			stateCode: "CA", salesAmount: "0", transactionCount: 1000000,
			wantNexus: false, wantReason: "below_threshold",
		},
		{
			name:      "montana levies no sales tax",
			stateCode: "MT", salesAmount: "99999999", transactionCount: 99999,
			wantNexus: false, wantReason: "no_sales_tax",
		},
		{
			name:      "oregon levies no sales tax",
			stateCode: "OR", salesAmount: "99999999", transactionCount: 99999,
			wantNexus: false, wantReason: "no_sales_tax",
		},
		{
			name:      "new hampshire levies no sales tax",
			stateCode: "NH", salesAmount: "99999999", transactionCount: 99999,
			wantNexus: false, wantReason: "no_sales_tax",
		},
		{
			name:      "unknown jurisdiction",
			stateCode: "ZZ", salesAmount: "99999999", transactionCount: 99999,
			wantNexus: false, wantReason: "no_sales_tax",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := svc.CheckEconomicNexus(tt.stateCode, dec(tt.salesAmount), tt.transactionCount, asOf)
			assert.Equal(t, tt.wantNexus, status.HasNexus)
			assert.Equal(t, tt.wantReason, status.Analysis.Reason)
			assert.Equal(t, business.TaxTypeSales, status.TaxType)
			if tt.wantNexus {
				require.NotNil(t, status.EffectiveDate)
				assert.Equal(t, asOf, *status.EffectiveDate)
				assert.Contains(t, status.NexusTypes, business.NexusTypeEconomicSales)
			}
		})
	}
}

func TestNexusService_CheckPhysicalPresenceNexus(t *testing.T) {
	svc := newNexusService()
	officeStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	activities := []business.BusinessActivity{
		activity(business.ActivityOffice, "NY", officeStart, nil),
	}

	t.Run("open-ended office creates nexus", func(t *testing.T) {
		status := svc.CheckPhysicalPresenceNexus("NY", activities, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.True(t, status.HasNexus)
		assert.Equal(t, "physical_presence", status.Analysis.Reason)
		require.Len(t, status.Analysis.MatchingActivities, 1)
		require.NotNil(t, status.EffectiveDate)
		assert.Equal(t, officeStart, *status.EffectiveDate)
	})

	t.Run("check date before activity start", func(t *testing.T) {
		status := svc.CheckPhysicalPresenceNexus("NY", activities, time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, status.HasNexus)
		assert.Equal(t, "no_qualifying_activities", status.Analysis.Reason)
	})

	t.Run("ended activity no longer qualifies", func(t *testing.T) {
		end := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
		ended := []business.BusinessActivity{
			activity(business.ActivityWarehouse, "TX", officeStart, &end),
		}
		status := svc.CheckPhysicalPresenceNexus("TX", ended, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, status.HasNexus)
	})

	t.Run("protected activity types never create nexus", func(t *testing.T) {
		protected := []business.BusinessActivity{
			activity(business.ActivityIndependentContractor, "NY", officeStart, nil),
			activity(business.ActivitySalesRep, "NY", officeStart, nil),
			activity(business.ActivityTradeShow, "NY", officeStart, nil),
			activity(business.ActivityDelivery, "NY", officeStart, nil),
		}
		status := svc.CheckPhysicalPresenceNexus("NY", protected, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, status.HasNexus)
		assert.Equal(t, "no_qualifying_activities", status.Analysis.Reason)
	})

	t.Run("activities in other states ignored", func(t *testing.T) {
		status := svc.CheckPhysicalPresenceNexus("CA", activities, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		assert.False(t, status.HasNexus)
	})

	t.Run("earliest start date wins", func(t *testing.T) {
		earlier := time.Date(2022, 3, 15, 0, 0, 0, 0, time.UTC)
		multi := []business.BusinessActivity{
			activity(business.ActivityOffice, "NY", officeStart, nil),
			activity(business.ActivityEmployee, "NY", earlier, nil),
		}
		status := svc.CheckPhysicalPresenceNexus("NY", multi, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		require.NotNil(t, status.EffectiveDate)
		assert.Equal(t, earlier, *status.EffectiveDate)
	})
}

func TestNexusService_CheckIncomeTaxNexus(t *testing.T) {
	svc := newNexusService()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("physical presence trumps unmet thresholds", func(t *testing.T) {
		activities := []business.BusinessActivity{
			activity(business.ActivityOffice, "CA", start, nil),
		}
		// All factor-presence dollar amounts are far below CA's thresholds.
		financials := params.BusinessFinancials{
			StateSales: map[string]decimal.Decimal{"CA": dec("100")},
		}

		status := svc.CheckIncomeTaxNexus("CA", activities, financials, asOf)
		assert.True(t, status.HasNexus)
		assert.Equal(t, business.TaxTypeIncome, status.TaxType)
		assert.Contains(t, status.NexusTypes, business.NexusTypePhysicalPresence)
	})

	t.Run("single factor meeting threshold suffices", func(t *testing.T) {
		// CA payroll threshold is $50,000; sales and property stay below.
		financials := params.BusinessFinancials{
			StateSales:   map[string]decimal.Decimal{"CA": dec("1000")},
			StatePayroll: map[string]decimal.Decimal{"CA": dec("50000")},
		}

		status := svc.CheckIncomeTaxNexus("CA", nil, financials, asOf)
		assert.True(t, status.HasNexus)
		assert.Equal(t, "factor_presence", status.Analysis.Reason)
		assert.Contains(t, status.Analysis.AppliedRules, "FACTOR_PRESENCE_payroll")
		assert.Contains(t, status.NexusTypes, business.NexusTypeFactorPresence)
	})

	t.Run("all factors below thresholds", func(t *testing.T) {
		financials := params.BusinessFinancials{
			StateSales:   map[string]decimal.Decimal{"CA": dec("499999")},
			StatePayroll: map[string]decimal.Decimal{"CA": dec("49999")},
		}

		status := svc.CheckIncomeTaxNexus("CA", nil, financials, asOf)
		assert.False(t, status.HasNexus)
		assert.Equal(t, "below_threshold", status.Analysis.Reason)
	})

	t.Run("state without factor thresholds", func(t *testing.T) {
		// Florida configures no income tax thresholds; nothing to meet.
		financials := params.BusinessFinancials{
			StateSales: map[string]decimal.Decimal{"FL": dec("99999999")},
		}
		status := svc.CheckIncomeTaxNexus("FL", nil, financials, asOf)
		assert.False(t, status.HasNexus)
	})
}

func TestNexusService_GetAllNexusStatus(t *testing.T) {
	svc := newNexusService()
	asOf := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	activities := []business.BusinessActivity{
		activity(business.ActivityOffice, "NY", start, nil),
	}
	financials := params.BusinessFinancials{
		StateSales: map[string]decimal.Decimal{
			"CA": dec("600000"),
			"OR": dec("250000"),
		},
	}

	result := svc.GetAllNexusStatus(activities, financials, asOf)

	// Candidate set is the union of activity states and financial states.
	require.Contains(t, result, "NY")
	require.Contains(t, result, "CA")
	require.Contains(t, result, "OR")

	// CA crossed its economic sales threshold.
	caSales, ok := result["CA"][business.TaxTypeSales]
	require.True(t, ok)
	assert.True(t, caSales.HasNexus)
	assert.Contains(t, caSales.NexusTypes, business.NexusTypeEconomicSales)

	// CA also crossed its factor-presence sales threshold for income tax.
	caIncome := result["CA"][business.TaxTypeIncome]
	assert.True(t, caIncome.HasNexus)

	// Oregon has no sales tax, so no sales-tax entry is produced at all.
	_, hasSalesEntry := result["OR"][business.TaxTypeSales]
	assert.False(t, hasSalesEntry)

	// NY physical presence carries into both tax types.
	nySales := result["NY"][business.TaxTypeSales]
	assert.True(t, nySales.HasNexus)
	assert.Contains(t, nySales.NexusTypes, business.NexusTypePhysicalPresence)
	nyIncome := result["NY"][business.TaxTypeIncome]
	assert.True(t, nyIncome.HasNexus)
}

func TestNexusService_MonitorThresholdProximity(t *testing.T) {
	svc := newNexusService()

	t.Run("sales within proximity band", func(t *testing.T) {
		// CA threshold is $500,000; 85% of it sits inside the default band.
		financials := params.BusinessFinancials{
			StateSales: map[string]decimal.Decimal{"CA": dec("425000")},
		}

		warnings := svc.MonitorThresholdProximity(financials, decimal.Zero)
		require.Contains(t, warnings, "CA")
		require.Len(t, warnings["CA"], 1)

		w := warnings["CA"][0]
		assert.Equal(t, "sales", w.Metric)
		assert.True(t, w.PercentOfThreshold.Equal(dec("85")), "percent %s", w.PercentOfThreshold)
		assert.True(t, w.Remaining.Equal(dec("75000")), "remaining %s", w.Remaining)
	})

	t.Run("crossed threshold is not a proximity warning", func(t *testing.T) {
		financials := params.BusinessFinancials{
			StateSales: map[string]decimal.Decimal{"CA": dec("500000")},
		}
		warnings := svc.MonitorThresholdProximity(financials, decimal.Zero)
		assert.NotContains(t, warnings, "CA")
	})

	t.Run("below the band is quiet", func(t *testing.T) {
		financials := params.BusinessFinancials{
			StateSales: map[string]decimal.Decimal{"CA": dec("100000")},
		}
		warnings := svc.MonitorThresholdProximity(financials, decimal.Zero)
		assert.NotContains(t, warnings, "CA")
	})

	t.Run("transaction counts monitored too", func(t *testing.T) {
		// NY transaction threshold is 100.
		financials := params.BusinessFinancials{
			StateTransactions: map[string]int64{"NY": 90},
		}
		warnings := svc.MonitorThresholdProximity(financials, decimal.Zero)
		require.Contains(t, warnings, "NY")
		assert.Equal(t, "transactions", warnings["NY"][0].Metric)
	})

	t.Run("custom proximity fraction", func(t *testing.T) {
		financials := params.BusinessFinancials{
			StateSales: map[string]decimal.Decimal{"CA": dec("300000")},
		}
		warnings := svc.MonitorThresholdProximity(financials, dec("0.5"))
		require.Contains(t, warnings, "CA")
	})
}

func TestNexusService_ValidateNexusData(t *testing.T) {
	svc := newNexusService()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("activities without financial data", func(t *testing.T) {
		activities := []business.BusinessActivity{
			activity(business.ActivityOffice, "NY", start, nil),
		}
		warnings := svc.ValidateNexusData(activities, params.BusinessFinancials{})
		require.Len(t, warnings, 1)
		assert.Equal(t, business.WarnMissingData, warnings[0].Code)
		assert.Equal(t, "NY", warnings[0].StateCode)
	})

	t.Run("sales without transactions and vice versa", func(t *testing.T) {
		financials := params.BusinessFinancials{
			StateSales:        map[string]decimal.Decimal{"CA": dec("100000")},
			StateTransactions: map[string]int64{"TX": 50},
		}
		warnings := svc.ValidateNexusData(nil, financials)
		require.Len(t, warnings, 2)
		for _, w := range warnings {
			assert.Equal(t, business.WarnSuspiciousData, w.Code)
		}
	})

	t.Run("consistent data is clean", func(t *testing.T) {
		activities := []business.BusinessActivity{
			activity(business.ActivityOffice, "CA", start, nil),
		}
		financials := params.BusinessFinancials{
			StateSales:        map[string]decimal.Decimal{"CA": dec("100000")},
			StateTransactions: map[string]int64{"CA": 50},
		}
		assert.Empty(t, svc.ValidateNexusData(activities, financials))
	})
}
