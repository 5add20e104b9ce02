package services_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/services"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
)

func init() {
	logger.InitLogger("test")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newApportionmentService() *services.ApportionmentService {
	registry := stateconfig.NewRegistry()
	return services.NewApportionmentService(registry, services.NewRateService())
}

func TestApportionmentService_CalculateSalesFactor(t *testing.T) {
	svc := newApportionmentService()

	tests := []struct {
		name           string
		stateCode      string
		stateSales     string
		totalSales     string
		throwbackSales string
		expected       string
	}{
		{
			name:       "california single sales factor half of total",
			stateCode:  "CA",
			stateSales: "5000000", totalSales: "10000000", throwbackSales: "0",
			expected: "0.5",
		},
		{
			name:       "throwback sales added to numerator",
			stateCode:  "CA",
			stateSales: "300000", totalSales: "1000000", throwbackSales: "100000",
			expected: "0.4",
		},
		{
			name:       "throwout sales removed from denominator",
			stateCode:  "NJ",
			stateSales: "200000", totalSales: "1000000", throwbackSales: "200000",
			expected: "0.25",
		},
		{
			name:       "no-rule state ignores throwback sales",
			stateCode:  "FL",
			stateSales: "250000", totalSales: "1000000", throwbackSales: "100000",
			expected: "0.25",
		},
		{
			name:       "zero total sales yields zero factor",
			stateCode:  "CA",
			stateSales: "5000000", totalSales: "0", throwbackSales: "0",
			expected: "0",
		},
		{
			name:       "six decimal rounding",
			stateCode:  "TX",
			stateSales: "1", totalSales: "3", throwbackSales: "0",
			expected: "0.333333",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CalculateSalesFactor(tt.stateCode, dec(tt.stateSales), dec(tt.totalSales), dec(tt.throwbackSales))
			assert.True(t, got.Equal(dec(tt.expected)), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestApportionmentService_ThrowbackAdditivity(t *testing.T) {
	svc := newApportionmentService()

	// Passing throwback sales explicitly must equal pre-adding them to the
	// state's own sales for a throwback-rule state.
	s, total, b := dec("300000"), dec("1000000"), dec("100000")
	explicit := svc.CalculateSalesFactor("CA", s, total, b)
	preAdded := svc.CalculateSalesFactor("CA", s.Add(b), total, decimal.Zero)
	assert.True(t, explicit.Equal(preAdded), "explicit %s != pre-added %s", explicit, preAdded)
}

func TestApportionmentService_ThrowoutSubtraction(t *testing.T) {
	svc := newApportionmentService()

	// Maine applies throwout: the nowhere sales leave the denominator only.
	s, total, b := dec("100000"), dec("1000000"), dec("200000")
	got := svc.CalculateSalesFactor("ME", s, total, b)
	want := s.DivRound(total.Sub(b), 6)
	assert.True(t, got.Equal(want), "got %s, want %s", got, want)
}

func TestApportionmentService_PayrollAndPropertyFactors(t *testing.T) {
	svc := newApportionmentService()

	assert.True(t, svc.CalculatePayrollFactor("CA", dec("250000"), dec("1000000")).Equal(dec("0.25")))
	assert.True(t, svc.CalculatePropertyFactor("CA", dec("100000"), dec("400000")).Equal(dec("0.25")))

	// Zero totals never divide by zero.
	assert.True(t, svc.CalculatePayrollFactor("CA", dec("250000"), decimal.Zero).IsZero())
	assert.True(t, svc.CalculatePropertyFactor("CA", dec("100000"), decimal.Zero).IsZero())
}

func TestApportionmentService_CalculateApportionmentPercentage(t *testing.T) {
	svc := newApportionmentService()

	tests := []struct {
		name                          string
		stateCode                     string
		sales, payroll, property      string
		expected                      string
	}{
		{
			name:      "single sales factor collapses to sales",
			stateCode: "CA",
			sales:     "0.5", payroll: "0.9", property: "0.9",
			expected: "0.5",
		},
		{
			name:      "double weighted sales blend",
			stateCode: "PA",
			sales:     "0.4", payroll: "0.3", property: "0.2",
			expected: "0.325",
		},
		{
			name:      "equally weighted average",
			stateCode: "AK",
			sales:     "0.3", payroll: "0.3", property: "0.3",
			expected: "0.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.CalculateApportionmentPercentage(tt.stateCode, dec(tt.sales), dec(tt.payroll), dec(tt.property))
			assert.True(t, got.Equal(dec(tt.expected)), "got %s, want %s", got, tt.expected)
		})
	}
}

func TestApportionmentService_PercentageStaysWithinBounds(t *testing.T) {
	svc := newApportionmentService()
	one := decimal.NewFromInt(1)

	factors := []string{"0", "0.25", "0.5", "0.999999", "1"}
	states := []string{"CA", "PA", "AK", "NJ", "ZZ"}
	for _, state := range states {
		for _, s := range factors {
			for _, p := range factors {
				got := svc.CalculateApportionmentPercentage(state, dec(s), dec(p), dec(p))
				assert.False(t, got.IsNegative(), "%s: %s", state, got)
				assert.True(t, got.LessThanOrEqual(one), "%s: %s exceeds 1", state, got)
			}
		}
	}
}

func TestApportionmentService_CalculateMultistateApportionment(t *testing.T) {
	svc := newApportionmentService()
	calcDate := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)

	t.Run("three state split with no nowhere sales", func(t *testing.T) {
		data := params.MultistateBusinessData{
			States:     []string{"CA", "NY", "TX"},
			TotalSales: dec("10000000"),
			StateSales: map[string]decimal.Decimal{
				"CA": dec("5000000"),
				"NY": dec("3000000"),
				"TX": dec("2000000"),
			},
			CalculationDate: calcDate,
			TaxYear:         2024,
		}

		factors := svc.CalculateMultistateApportionment(data)
		require.Len(t, factors.States, 3)

		ca, ok := factors.ForState("CA")
		require.True(t, ok)
		assert.True(t, ca.SalesFactor.Equal(dec("0.5")), "CA sales factor %s", ca.SalesFactor)

		ny, _ := factors.ForState("NY")
		assert.True(t, ny.SalesFactor.Equal(dec("0.3")), "NY sales factor %s", ny.SalesFactor)

		tx, _ := factors.ForState("TX")
		assert.True(t, tx.SalesFactor.Equal(dec("0.2")), "TX sales factor %s", tx.SalesFactor)

		// All three are single-sales-factor states, so the percentages sum
		// to exactly 100% and no warning fires.
		assert.True(t, factors.TotalPercentage.Equal(decimal.NewFromInt(1)), "total %s", factors.TotalPercentage)
		assert.Empty(t, svc.ValidateApportionmentFactors(factors))
	})

	t.Run("nowhere sales distributed proportionally to throwback states", func(t *testing.T) {
		// CA and WI apply throwback; NY does not. The $100,000 nowhere pool
		// splits 30/70 following the two states' own sales.
		data := params.MultistateBusinessData{
			States:       []string{"CA", "WI", "NY"},
			TotalSales:   dec("2000000"),
			NowhereSales: dec("100000"),
			StateSales: map[string]decimal.Decimal{
				"CA": dec("300000"),
				"WI": dec("700000"),
				"NY": dec("1000000"),
			},
			CalculationDate: calcDate,
			TaxYear:         2024,
		}

		factors := svc.CalculateMultistateApportionment(data)

		ca, _ := factors.ForState("CA")
		assert.True(t, ca.ThrowbackAdjustment.Equal(dec("30000")), "CA adjustment %s", ca.ThrowbackAdjustment)

		wi, _ := factors.ForState("WI")
		assert.True(t, wi.ThrowbackAdjustment.Equal(dec("70000")), "WI adjustment %s", wi.ThrowbackAdjustment)

		ny, _ := factors.ForState("NY")
		assert.True(t, ny.ThrowbackAdjustment.IsZero())

		// Each throwback state's factor matches pre-adding its share.
		wantCA := svc.CalculateSalesFactor("CA", dec("330000"), dec("2000000"), decimal.Zero)
		assert.True(t, ca.SalesFactor.Equal(wantCA), "CA factor %s, want %s", ca.SalesFactor, wantCA)
	})

	t.Run("identical input yields identical output", func(t *testing.T) {
		data := params.MultistateBusinessData{
			States:       []string{"CA", "PA"},
			TotalSales:   dec("1000000"),
			TotalPayroll: dec("400000"),
			NowhereSales: dec("50000"),
			StateSales: map[string]decimal.Decimal{
				"CA": dec("600000"),
				"PA": dec("400000"),
			},
			StatePayroll: map[string]decimal.Decimal{
				"CA": dec("300000"),
				"PA": dec("100000"),
			},
			CalculationDate: calcDate,
			TaxYear:         2024,
		}

		first := svc.CalculateMultistateApportionment(data)
		second := svc.CalculateMultistateApportionment(data)
		assert.Equal(t, first, second)
	})
}

func TestApportionmentService_ValidateApportionmentFactors(t *testing.T) {
	svc := newApportionmentService()

	t.Run("over-apportionment beyond tolerance", func(t *testing.T) {
		factors := business.ApportionmentFactors{
			States: []business.StateApportionment{
				{StateCode: "CA", ApportionmentPercentage: dec("0.5")},
				{StateCode: "NY", ApportionmentPercentage: dec("0.35")},
				{StateCode: "TX", ApportionmentPercentage: dec("0.2")},
			},
		}

		warnings := svc.ValidateApportionmentFactors(factors)
		require.Len(t, warnings, 1)
		assert.Equal(t, business.WarnOverApportionment, warnings[0].Code)
		assert.Contains(t, warnings[0].Message, "1.05")
	})

	t.Run("sum within rounding tolerance passes", func(t *testing.T) {
		factors := business.ApportionmentFactors{
			States: []business.StateApportionment{
				{StateCode: "CA", ApportionmentPercentage: dec("0.6")},
				{StateCode: "NY", ApportionmentPercentage: dec("0.405")},
			},
		}
		assert.Empty(t, svc.ValidateApportionmentFactors(factors))
	})

	t.Run("negative and dominant state percentages flagged", func(t *testing.T) {
		factors := business.ApportionmentFactors{
			States: []business.StateApportionment{
				{StateCode: "CA", ApportionmentPercentage: dec("0.95")},
				{StateCode: "NY", ApportionmentPercentage: dec("-0.05")},
			},
		}

		warnings := svc.ValidateApportionmentFactors(factors)
		codes := make([]string, len(warnings))
		for i, w := range warnings {
			codes[i] = w.Code
		}
		assert.Contains(t, codes, business.WarnDominantState)
		assert.Contains(t, codes, business.WarnNegativeFactor)
	})
}

func TestApportionmentService_DetermineFilingMethod(t *testing.T) {
	svc := newApportionmentService()

	tests := []struct {
		name        string
		states      []string
		totalIncome string
		expected    business.FilingMethod
	}{
		{
			name:   "state mandate forces combined",
			states: []string{"CA", "FL"}, totalIncome: "100000",
			expected: business.FilingMethodCombined,
		},
		{
			name:   "high income across many states",
			states: []string{"FL", "GA", "SC", "NC"}, totalIncome: "15000000",
			expected: business.FilingMethodCombined,
		},
		{
			name:   "few states stay separate despite income",
			states: []string{"FL", "GA"}, totalIncome: "15000000",
			expected: business.FilingMethodSeparate,
		},
		{
			name:   "many states with modest income stay separate",
			states: []string{"FL", "GA", "SC", "NC"}, totalIncome: "5000000",
			expected: business.FilingMethodSeparate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.DetermineFilingMethod(tt.states, dec(tt.totalIncome))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestApportionmentService_CustomFilingPolicy(t *testing.T) {
	registry := stateconfig.NewRegistry()
	svc := services.NewApportionmentService(registry, services.NewRateService()).
		WithCombinedFilingPolicy(services.CombinedFilingPolicy{
			MinStates:       1,
			IncomeThreshold: dec("1000000"),
		})

	got := svc.DetermineFilingMethod([]string{"FL", "GA"}, dec("2000000"))
	assert.Equal(t, business.FilingMethodCombined, got)
}

func TestApportionmentService_CalculateStateTaxLiability(t *testing.T) {
	registry := stateconfig.NewRegistry()

	t.Run("default rate table yields zero liability", func(t *testing.T) {
		svc := services.NewApportionmentService(registry, services.NewRateService())
		liability := svc.CalculateStateTaxLiability("CA", dec("1000000"))
		assert.True(t, liability.TotalTax.IsZero())
		assert.True(t, liability.CorporateTax.IsZero())
	})

	t.Run("rates applied with minimum tax floor", func(t *testing.T) {
		rates := services.NewRateServiceWithTable(map[string]business.StateTaxRates{
			"CA": {CorporateRate: dec("0.0884"), FranchiseRate: dec("0"), MinimumTax: dec("800")},
			"DE": {CorporateRate: dec("0.087"), FranchiseRate: dec("0.0004"), MinimumTax: dec("175")},
		})
		svc := services.NewApportionmentService(registry, rates)

		liability := svc.CalculateStateTaxLiability("CA", dec("1000000"))
		assert.True(t, liability.CorporateTax.Equal(dec("88400")), "corporate %s", liability.CorporateTax)
		assert.True(t, liability.TotalTax.Equal(dec("88400")))

		// Tiny apportioned income floors at the state minimum.
		small := svc.CalculateStateTaxLiability("CA", dec("100"))
		assert.True(t, small.TotalTax.Equal(dec("800")), "total %s", small.TotalTax)
	})
}
