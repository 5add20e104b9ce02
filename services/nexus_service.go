package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
	"go.uber.org/zap"
)

// DefaultProximityThreshold is the fraction of an economic nexus threshold at
// which proximity warnings begin.
var DefaultProximityThreshold = decimal.RequireFromString("0.80")

// NexusService determines, per state and tax type, whether a business has
// established nexus. All operations are pure functions over the supplied
// inputs and the read-only state config registry; business conditions never
// produce errors.
type NexusService struct {
	registry *stateconfig.Registry
	logger   *zap.Logger
}

// NewNexusService creates a new nexus service
func NewNexusService(registry *stateconfig.Registry) *NexusService {
	return &NexusService{
		registry: registry,
		logger:   logger.Log,
	}
}

// CheckEconomicNexus evaluates sales-tax economic nexus for one state.
// States with no configured sales-tax thresholds levy no sales tax, so the
// answer is always no-nexus with reason "no_sales_tax" regardless of volume.
// An absent threshold is skipped, not treated as zero.
func (s *NexusService) CheckEconomicNexus(stateCode string, salesAmount decimal.Decimal, transactionCount int64, asOfDate time.Time) business.NexusStatus {
	status := business.NexusStatus{
		StateCode: stateCode,
		TaxType:   business.TaxTypeSales,
		Analysis: business.NexusAnalysis{
			SalesAmount:      &salesAmount,
			TransactionCount: &transactionCount,
		},
	}

	config, ok := s.registry.GetConfig(stateCode)
	if !ok || !config.HasSalesTax() {
		status.Analysis.Reason = "no_sales_tax"
		return status
	}

	status.Analysis.SalesThreshold = config.SalesThreshold
	status.Analysis.TransactionThreshold = config.TransactionThreshold

	salesMet := config.SalesThreshold != nil && salesAmount.GreaterThanOrEqual(*config.SalesThreshold)
	transactionsMet := config.TransactionThreshold != nil && transactionCount >= *config.TransactionThreshold

	if salesMet {
		status.Analysis.AppliedRules = append(status.Analysis.AppliedRules, "ECONOMIC_NEXUS_SALES_THRESHOLD")
	}
	if transactionsMet {
		status.Analysis.AppliedRules = append(status.Analysis.AppliedRules, "ECONOMIC_NEXUS_TRANSACTION_THRESHOLD")
	}

	if salesMet || transactionsMet {
		effective := asOfDate
		status.HasNexus = true
		status.NexusTypes = []business.NexusType{business.NexusTypeEconomicSales}
		status.EffectiveDate = &effective
		status.Analysis.Reason = "threshold_met"
	} else {
		status.Analysis.Reason = "below_threshold"
	}

	return status
}

// CheckPhysicalPresenceNexus evaluates physical presence nexus from the
// recorded activities. Only activities in the state, active on asOfDate, and
// of a nexus-creating type qualify; protected activity types (independent
// contractors, sales reps, trade shows, deliveries) never do.
func (s *NexusService) CheckPhysicalPresenceNexus(stateCode string, activities []business.BusinessActivity, asOfDate time.Time) business.NexusStatus {
	status := business.NexusStatus{
		StateCode: stateCode,
		TaxType:   business.TaxTypeSales,
	}

	var matching []business.BusinessActivity
	for _, activity := range activities {
		if activity.StateCode != stateCode {
			continue
		}
		if !activity.IsActiveOn(asOfDate) {
			continue
		}
		if !activity.ActivityType.CreatesNexus() {
			continue
		}
		matching = append(matching, activity)
	}

	if len(matching) == 0 {
		status.Analysis.Reason = "no_qualifying_activities"
		return status
	}

	// Nexus attaches on the first day a qualifying activity was in effect.
	effective := matching[0].StartDate
	for _, activity := range matching[1:] {
		if activity.StartDate.Before(effective) {
			effective = activity.StartDate
		}
	}

	status.HasNexus = true
	status.NexusTypes = []business.NexusType{business.NexusTypePhysicalPresence}
	status.EffectiveDate = &effective
	status.Analysis.Reason = "physical_presence"
	status.Analysis.MatchingActivities = matching
	status.Analysis.AppliedRules = []string{"PHYSICAL_PRESENCE_ACTIVITY"}
	return status
}

// CheckIncomeTaxNexus evaluates income-tax nexus. Physical presence always
// trumps economic thresholds: with a qualifying activity in the state, nexus
// is established regardless of the factor-presence dollar amounts. Absent
// physical presence, nexus exists when any one factor meets its configured
// threshold (a disjunction, not a conjunction).
func (s *NexusService) CheckIncomeTaxNexus(stateCode string, activities []business.BusinessActivity, financials params.BusinessFinancials, asOfDate time.Time) business.NexusStatus {
	physical := s.CheckPhysicalPresenceNexus(stateCode, activities, asOfDate)
	if physical.HasNexus {
		physical.TaxType = business.TaxTypeIncome
		physical.Analysis.Notes = append(physical.Analysis.Notes,
			"physical presence establishes income tax nexus regardless of thresholds")
		return physical
	}

	status := business.NexusStatus{
		StateCode: stateCode,
		TaxType:   business.TaxTypeIncome,
	}

	config, ok := s.registry.GetConfig(stateCode)
	if !ok {
		status.Analysis.Reason = "no_thresholds_configured"
		return status
	}

	thresholds := config.IncomeTaxThresholds
	type factorCheck struct {
		name      string
		threshold *decimal.Decimal
		actual    decimal.Decimal
	}
	checks := []factorCheck{
		{"sales", thresholds.Sales, financials.SalesFor(stateCode)},
		{"property", thresholds.Property, financials.StateProperty[stateCode]},
		{"payroll", thresholds.Payroll, financials.StatePayroll[stateCode]},
	}

	met := false
	for _, check := range checks {
		if check.threshold == nil {
			continue
		}
		if check.actual.GreaterThanOrEqual(*check.threshold) {
			met = true
			status.Analysis.AppliedRules = append(status.Analysis.AppliedRules,
				fmt.Sprintf("FACTOR_PRESENCE_%s", check.name))
			status.Analysis.Notes = append(status.Analysis.Notes,
				fmt.Sprintf("%s of %s meets threshold %s", check.name, check.actual.String(), check.threshold.String()))
		}
	}

	if met {
		effective := asOfDate
		status.HasNexus = true
		status.NexusTypes = []business.NexusType{business.NexusTypeFactorPresence}
		status.EffectiveDate = &effective
		status.Analysis.Reason = "factor_presence"
	} else {
		status.Analysis.Reason = "below_threshold"
	}
	return status
}

// GetAllNexusStatus evaluates nexus across every candidate state: the union
// of states with recorded activities and states referenced in the financial
// data. Sales-tax nexus is only evaluated for states that tax sales; nexus
// type tags from economic and physical determinations are merged.
func (s *NexusService) GetAllNexusStatus(activities []business.BusinessActivity, financials params.BusinessFinancials, asOfDate time.Time) map[string]map[business.TaxType]business.NexusStatus {
	s.logger.Info("Evaluating nexus across all candidate states",
		zap.Int("activity_count", len(activities)),
		zap.Time("as_of_date", asOfDate))

	candidates := financials.StateSet()
	for _, activity := range activities {
		candidates[activity.StateCode] = true
	}

	result := make(map[string]map[business.TaxType]business.NexusStatus, len(candidates))
	for stateCode := range candidates {
		byTaxType := make(map[business.TaxType]business.NexusStatus, 2)

		if config, ok := s.registry.GetConfig(stateCode); ok && config.HasSalesTax() {
			economic := s.CheckEconomicNexus(stateCode, financials.SalesFor(stateCode), financials.TransactionsFor(stateCode), asOfDate)
			physical := s.CheckPhysicalPresenceNexus(stateCode, activities, asOfDate)
			byTaxType[business.TaxTypeSales] = mergeNexusStatuses(economic, physical)
		}

		byTaxType[business.TaxTypeIncome] = s.CheckIncomeTaxNexus(stateCode, activities, financials, asOfDate)
		result[stateCode] = byTaxType
	}

	return result
}

// mergeNexusStatuses combines two determinations for the same state and tax
// type, keeping the union of nexus type tags and the earliest effective date.
func mergeNexusStatuses(a, b business.NexusStatus) business.NexusStatus {
	merged := a
	merged.HasNexus = a.HasNexus || b.HasNexus
	merged.NexusTypes = append(append([]business.NexusType{}, a.NexusTypes...), b.NexusTypes...)
	merged.Analysis.AppliedRules = append(append([]string{}, a.Analysis.AppliedRules...), b.Analysis.AppliedRules...)
	merged.Analysis.Notes = append(append([]string{}, a.Analysis.Notes...), b.Analysis.Notes...)
	if len(b.Analysis.MatchingActivities) > 0 {
		merged.Analysis.MatchingActivities = b.Analysis.MatchingActivities
	}
	if b.HasNexus && !a.HasNexus {
		merged.Analysis.Reason = b.Analysis.Reason
	}
	merged.EffectiveDate = a.EffectiveDate
	if b.EffectiveDate != nil && (merged.EffectiveDate == nil || b.EffectiveDate.Before(*merged.EffectiveDate)) {
		merged.EffectiveDate = b.EffectiveDate
	}
	return merged
}

// MonitorThresholdProximity flags states whose sales or transaction volume
// has reached the proximity fraction of an economic nexus threshold without
// crossing it. States at or past a threshold are nexus territory handled by
// the check operations, not warnings.
func (s *NexusService) MonitorThresholdProximity(financials params.BusinessFinancials, proximityThreshold decimal.Decimal) map[string][]business.ThresholdProximityWarning {
	if !proximityThreshold.IsPositive() {
		proximityThreshold = DefaultProximityThreshold
	}

	warnings := make(map[string][]business.ThresholdProximityWarning)
	for stateCode, config := range s.registry.All() {
		if config.SalesThreshold != nil {
			sales := financials.SalesFor(stateCode)
			if w, ok := proximityWarning(stateCode, "sales", sales, *config.SalesThreshold, proximityThreshold); ok {
				warnings[stateCode] = append(warnings[stateCode], w)
			}
		}
		if config.TransactionThreshold != nil {
			transactions := decimal.NewFromInt(financials.TransactionsFor(stateCode))
			threshold := decimal.NewFromInt(*config.TransactionThreshold)
			if w, ok := proximityWarning(stateCode, "transactions", transactions, threshold, proximityThreshold); ok {
				warnings[stateCode] = append(warnings[stateCode], w)
			}
		}
	}
	return warnings
}

func proximityWarning(stateCode, metric string, current, threshold, proximity decimal.Decimal) (business.ThresholdProximityWarning, bool) {
	if !threshold.IsPositive() {
		return business.ThresholdProximityWarning{}, false
	}
	floor := threshold.Mul(proximity)
	if current.LessThan(floor) || current.GreaterThanOrEqual(threshold) {
		return business.ThresholdProximityWarning{}, false
	}
	return business.ThresholdProximityWarning{
		StateCode:          stateCode,
		Metric:             metric,
		CurrentValue:       current,
		Threshold:          threshold,
		PercentOfThreshold: current.Div(threshold).Mul(decimal.NewFromInt(100)).Round(2),
		Remaining:          threshold.Sub(current),
	}, true
}

// ValidateNexusData sanity-checks activity records against the financial
// data. All findings are advisory; this never errors.
func (s *NexusService) ValidateNexusData(activities []business.BusinessActivity, financials params.BusinessFinancials) []business.ValidationWarning {
	warnings := []business.ValidationWarning{}

	activityStates := make(map[string]bool)
	for _, activity := range activities {
		activityStates[activity.StateCode] = true
	}

	for stateCode := range activityStates {
		_, hasSales := financials.StateSales[stateCode]
		_, hasTransactions := financials.StateTransactions[stateCode]
		if !hasSales && !hasTransactions {
			warnings = append(warnings, business.ValidationWarning{
				Code:      business.WarnMissingData,
				StateCode: stateCode,
				Message:   fmt.Sprintf("activities recorded in %s but no sales or transaction data reported", stateCode),
			})
		}
	}

	for stateCode, sales := range financials.StateSales {
		if sales.IsPositive() && financials.TransactionsFor(stateCode) == 0 {
			warnings = append(warnings, business.ValidationWarning{
				Code:      business.WarnSuspiciousData,
				StateCode: stateCode,
				Message:   fmt.Sprintf("%s reports sales of %s with zero transactions", stateCode, sales.String()),
			})
		}
	}
	for stateCode, transactions := range financials.StateTransactions {
		if transactions > 0 && financials.SalesFor(stateCode).IsZero() {
			warnings = append(warnings, business.ValidationWarning{
				Code:      business.WarnSuspiciousData,
				StateCode: stateCode,
				Message:   fmt.Sprintf("%s reports %d transactions with zero sales", stateCode, transactions),
			})
		}
	}

	return warnings
}
