package business

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxType identifies the kind of state tax a nexus determination applies to.
type TaxType string

const (
	TaxTypeSales  TaxType = "sales"
	TaxTypeIncome TaxType = "income"
)

// NexusType tags the basis on which nexus was established.
type NexusType string

const (
	NexusTypeEconomicSales    NexusType = "economic_sales"
	NexusTypePhysicalPresence NexusType = "physical_presence"
	NexusTypeFactorPresence   NexusType = "factor_presence"
)

// ApportionmentMethod is the formula family a state uses to weight factors.
type ApportionmentMethod string

const (
	MethodSingleSalesFactor   ApportionmentMethod = "single_sales_factor"
	MethodEquallyWeighted     ApportionmentMethod = "equally_weighted"
	MethodDoubleWeightedSales ApportionmentMethod = "double_weighted_sales"
	MethodCustom              ApportionmentMethod = "custom"
)

// ThrowbackRule controls how "nowhere" sales are treated in the sales factor.
type ThrowbackRule string

const (
	ThrowbackRuleThrowback ThrowbackRule = "throwback"
	ThrowbackRuleThrowout  ThrowbackRule = "throwout"
	ThrowbackRuleNone      ThrowbackRule = "none"
)

// FilingMethod is the recommended multi-state filing approach.
type FilingMethod string

const (
	FilingMethodSeparate     FilingMethod = "separate"
	FilingMethodCombined     FilingMethod = "combined"
	FilingMethodConsolidated FilingMethod = "consolidated"
)

// IsValid reports whether the filing method is a known value.
func (m FilingMethod) IsValid() bool {
	switch m {
	case FilingMethodSeparate, FilingMethodCombined, FilingMethodConsolidated:
		return true
	}
	return false
}

// FactorWeights are the per-factor weights a state applies when blending the
// sales, payroll, and property factors. Weights are non-negative; a configured
// state always has at least one positive weight.
type FactorWeights struct {
	Sales    decimal.Decimal `json:"sales"`
	Payroll  decimal.Decimal `json:"payroll"`
	Property decimal.Decimal `json:"property"`
}

// Total returns the sum of the three weights.
func (w FactorWeights) Total() decimal.Decimal {
	return w.Sales.Add(w.Payroll).Add(w.Property)
}

// IncomeTaxThresholds are the factor-presence dollar thresholds for income tax
// nexus. A nil field means the state has no threshold for that factor.
type IncomeTaxThresholds struct {
	Sales    *decimal.Decimal `json:"sales,omitempty"`
	Property *decimal.Decimal `json:"property,omitempty"`
	Payroll  *decimal.Decimal `json:"payroll,omitempty"`
}

// StateThresholdConfig is the per-state rule row: economic nexus thresholds,
// income tax factor-presence thresholds, apportionment formula, and throwback
// treatment. Nil sales-tax thresholds mean the state levies no sales tax.
type StateThresholdConfig struct {
	StateCode string `json:"state_code"`
	StateName string `json:"state_name"`

	// Economic nexus (sales tax). Either may be absent; an absent threshold
	// is skipped, not treated as zero.
	SalesThreshold       *decimal.Decimal `json:"sales_threshold,omitempty"`
	TransactionThreshold *int64           `json:"transaction_threshold,omitempty"`

	IncomeTaxThresholds IncomeTaxThresholds `json:"income_tax_thresholds"`

	ApportionmentMethod ApportionmentMethod `json:"apportionment_method"`
	FactorWeights       FactorWeights       `json:"factor_weights"`
	ThrowbackRule       ThrowbackRule       `json:"throwback_rule"`

	MandatesCombinedFiling bool `json:"mandates_combined_filing"`
}

// HasSalesTax reports whether the state levies a sales tax at all.
func (c StateThresholdConfig) HasSalesTax() bool {
	return c.SalesThreshold != nil || c.TransactionThreshold != nil
}

// NexusAnalysis explains a nexus determination: which thresholds were
// compared, the actual values, and any activities that matched.
type NexusAnalysis struct {
	Reason               string             `json:"reason,omitempty"`
	SalesAmount          *decimal.Decimal   `json:"sales_amount,omitempty"`
	SalesThreshold       *decimal.Decimal   `json:"sales_threshold,omitempty"`
	TransactionCount     *int64             `json:"transaction_count,omitempty"`
	TransactionThreshold *int64             `json:"transaction_threshold,omitempty"`
	MatchingActivities   []BusinessActivity `json:"matching_activities,omitempty"`
	AppliedRules         []string           `json:"applied_rules,omitempty"`
	Notes                []string           `json:"notes,omitempty"`
}

// NexusStatus is the outcome of a nexus determination for one state and tax
// type. Recomputed fresh on every analysis call, never mutated in place.
type NexusStatus struct {
	StateCode     string        `json:"state_code"`
	TaxType       TaxType       `json:"tax_type"`
	HasNexus      bool          `json:"has_nexus"`
	NexusTypes    []NexusType   `json:"nexus_types"`
	EffectiveDate *time.Time    `json:"effective_date,omitempty"`
	Analysis      NexusAnalysis `json:"analysis"`
}

// ThresholdProximityWarning signals that a state's sales or transaction
// volume is approaching, but has not crossed, an economic nexus threshold.
type ThresholdProximityWarning struct {
	StateCode          string          `json:"state_code"`
	Metric             string          `json:"metric"` // "sales" or "transactions"
	CurrentValue       decimal.Decimal `json:"current_value"`
	Threshold          decimal.Decimal `json:"threshold"`
	PercentOfThreshold decimal.Decimal `json:"percent_of_threshold"`
	Remaining          decimal.Decimal `json:"remaining"`
}

// ValidationWarning is an advisory finding. Warnings never abort a
// calculation; callers decide whether to act on them.
type ValidationWarning struct {
	Code      string `json:"code"`
	StateCode string `json:"state_code,omitempty"`
	Message   string `json:"message"`
}

// Validation warning codes
const (
	WarnOverApportionment = "apportionment_over_100"
	WarnNegativeFactor    = "negative_factor"
	WarnDominantState     = "dominant_state_factor"
	WarnMissingData       = "missing_financial_data"
	WarnSuspiciousData    = "suspicious_data"
	WarnUnconfiguredState = "unconfigured_state"
	WarnZeroTotalWeight   = "zero_total_weight"
)

// StateApportionment holds the computed factors for one state.
type StateApportionment struct {
	StateCode               string          `json:"state_code"`
	SalesFactor             decimal.Decimal `json:"sales_factor"`
	PayrollFactor           decimal.Decimal `json:"payroll_factor"`
	PropertyFactor          decimal.Decimal `json:"property_factor"`
	ApportionmentPercentage decimal.Decimal `json:"apportionment_percentage"`
	ThrowbackAdjustment     decimal.Decimal `json:"throwback_adjustment"`
}

// ApportionmentFactors is the full per-state factor breakdown for one filing.
type ApportionmentFactors struct {
	States          []StateApportionment `json:"states"`
	TotalPercentage decimal.Decimal      `json:"total_percentage"`
	CalculationDate time.Time            `json:"calculation_date"`
	TaxYear         int                  `json:"tax_year"`
}

// ForState returns the apportionment row for a state, if present.
func (f ApportionmentFactors) ForState(stateCode string) (StateApportionment, bool) {
	for _, s := range f.States {
		if s.StateCode == stateCode {
			return s, true
		}
	}
	return StateApportionment{}, false
}

// StateTaxRates are the rate inputs for a single state's liability
// computation. The engine applies whatever rates the lookup returns.
type StateTaxRates struct {
	CorporateRate decimal.Decimal `json:"corporate_rate"`
	FranchiseRate decimal.Decimal `json:"franchise_rate"`
	MinimumTax    decimal.Decimal `json:"minimum_tax"`
}

// StateTaxLiability is the liability estimate for one state.
type StateTaxLiability struct {
	StateCode               string          `json:"state_code"`
	ApportionmentPercentage decimal.Decimal `json:"apportionment_percentage"`
	ApportionedIncome       decimal.Decimal `json:"apportioned_income"`
	CorporateTax            decimal.Decimal `json:"corporate_tax"`
	FranchiseTax            decimal.Decimal `json:"franchise_tax"`
	MinimumTax              decimal.Decimal `json:"minimum_tax"`
	TotalTax                decimal.Decimal `json:"total_tax"`
}

// MultistateReturnResult is the assembled filing recommendation: method,
// factors, per-state liabilities, and any advisory warnings.
type MultistateReturnResult struct {
	FilingMethod       FilingMethod                 `json:"filing_method"`
	Factors            ApportionmentFactors         `json:"factors"`
	StateLiabilities   map[string]StateTaxLiability `json:"state_liabilities"`
	TotalTaxDue        decimal.Decimal              `json:"total_tax_due"`
	ValidationWarnings []ValidationWarning          `json:"validation_warnings"`
	CalculatedAt       time.Time                    `json:"calculated_at"`
}

// StoredReturn is a processed return read back from storage: the headline
// columns plus the full result snapshot as it was computed.
type StoredReturn struct {
	ID           uuid.UUID              `json:"id"`
	ProfileID    uuid.UUID              `json:"profile_id"`
	TaxYear      int                    `json:"tax_year"`
	FilingMethod FilingMethod           `json:"filing_method"`
	TotalTaxDue  decimal.Decimal        `json:"total_tax_due"`
	Status       string                 `json:"status"`
	Result       MultistateReturnResult `json:"result"`
	CreatedAt    time.Time              `json:"created_at"`
}
