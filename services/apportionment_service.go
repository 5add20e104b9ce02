package services

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/constants"
	"github.com/stateline/stateline-api/helpers"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
	"go.uber.org/zap"
)

// RateLookup resolves per-state tax rates for liability estimates. The
// engine applies whatever the lookup returns; rate data sourcing is the
// caller's concern.
type RateLookup interface {
	GetStateTaxRates(stateCode string) business.StateTaxRates
}

// CombinedFilingPolicy is the heuristic for recommending combined filing
// when no state mandates it. This is a business policy knob, not statute;
// operators can tune it per deployment.
type CombinedFilingPolicy struct {
	MinStates       int
	IncomeThreshold decimal.Decimal
}

// DefaultCombinedFilingPolicy recommends combined filing for businesses in
// more than 3 states with over $10M total income.
func DefaultCombinedFilingPolicy() CombinedFilingPolicy {
	return CombinedFilingPolicy{
		MinStates:       3,
		IncomeThreshold: decimal.RequireFromString("10000000"),
	}
}

// ApportionmentService computes per-state sales/payroll/property factors and
// weighted apportionment percentages, honoring each state's throwback or
// throwout rule. All operations are pure and zero-guarded.
type ApportionmentService struct {
	registry     *stateconfig.Registry
	rates        RateLookup
	filingPolicy CombinedFilingPolicy
	logger       *zap.Logger
}

// NewApportionmentService creates a new apportionment service
func NewApportionmentService(registry *stateconfig.Registry, rates RateLookup) *ApportionmentService {
	return &ApportionmentService{
		registry:     registry,
		rates:        rates,
		filingPolicy: DefaultCombinedFilingPolicy(),
		logger:       logger.Log,
	}
}

// WithCombinedFilingPolicy overrides the combined filing heuristic.
func (s *ApportionmentService) WithCombinedFilingPolicy(policy CombinedFilingPolicy) *ApportionmentService {
	s.filingPolicy = policy
	return s
}

// CalculateSalesFactor computes the sales factor for one state. Throwback
// states add throwback sales to the numerator; throwout states remove them
// from the denominator only. A zero denominator after adjustment yields a
// zero factor. Rounding is half-up at 6 decimal places and must stay that
// way: downstream sums are compared against a 100% tolerance band.
func (s *ApportionmentService) CalculateSalesFactor(stateCode string, stateSales, totalSales, throwbackSales decimal.Decimal) decimal.Decimal {
	config := s.registry.ConfigOrDefault(stateCode)

	numerator := stateSales
	denominator := totalSales
	switch config.ThrowbackRule {
	case business.ThrowbackRuleThrowback:
		numerator = numerator.Add(throwbackSales)
	case business.ThrowbackRuleThrowout:
		denominator = denominator.Sub(throwbackSales)
	}

	return helpers.SafeDivide(numerator, denominator, constants.FactorPrecision)
}

// CalculatePayrollFactor computes the plain payroll ratio. Throwback rules
// apply only to sales.
func (s *ApportionmentService) CalculatePayrollFactor(stateCode string, statePayroll, totalPayroll decimal.Decimal) decimal.Decimal {
	return helpers.SafeDivide(statePayroll, totalPayroll, constants.FactorPrecision)
}

// CalculatePropertyFactor computes the plain property ratio.
func (s *ApportionmentService) CalculatePropertyFactor(stateCode string, stateProperty, totalProperty decimal.Decimal) decimal.Decimal {
	return helpers.SafeDivide(stateProperty, totalProperty, constants.FactorPrecision)
}

// CalculateApportionmentPercentage blends the three factors using the
// state's configured weights. Single-sales-factor states collapse to the
// pure sales factor; a zero total weight (misconfiguration) yields zero
// rather than a division by zero.
func (s *ApportionmentService) CalculateApportionmentPercentage(stateCode string, salesFactor, payrollFactor, propertyFactor decimal.Decimal) decimal.Decimal {
	weights := s.registry.ConfigOrDefault(stateCode).FactorWeights
	weighted := salesFactor.Mul(weights.Sales).
		Add(payrollFactor.Mul(weights.Payroll)).
		Add(propertyFactor.Mul(weights.Property))
	return helpers.SafeDivide(weighted, weights.Total(), constants.FactorPrecision)
}

// calculateThrowbackAdjustments distributes the nowhere-sales pool across
// the throwback states in the filing, in proportion to each state's own
// sales volume. No throwback states, or zero sales across them, means no
// adjustments.
func (s *ApportionmentService) calculateThrowbackAdjustments(data params.MultistateBusinessData) map[string]decimal.Decimal {
	adjustments := make(map[string]decimal.Decimal)
	if !data.NowhereSales.IsPositive() {
		return adjustments
	}

	var throwbackStates []string
	totalThrowbackSales := decimal.Zero
	for _, stateCode := range data.States {
		if s.registry.ConfigOrDefault(stateCode).ThrowbackRule == business.ThrowbackRuleThrowback {
			throwbackStates = append(throwbackStates, stateCode)
			totalThrowbackSales = totalThrowbackSales.Add(data.SalesFor(stateCode))
		}
	}
	if len(throwbackStates) == 0 || totalThrowbackSales.IsZero() {
		return adjustments
	}

	for _, stateCode := range throwbackStates {
		share := data.SalesFor(stateCode).Div(totalThrowbackSales)
		adjustments[stateCode] = data.NowhereSales.Mul(share).Round(2)
	}
	return adjustments
}

// CalculateMultistateApportionment computes the full factor breakdown for
// every state in the filing. Throwback adjustments are computed once for the
// whole business before the per-state loop.
func (s *ApportionmentService) CalculateMultistateApportionment(data params.MultistateBusinessData) business.ApportionmentFactors {
	s.logger.Info("Calculating multistate apportionment",
		zap.Int("state_count", len(data.States)),
		zap.String("total_sales", data.TotalSales.String()),
		zap.Int("tax_year", data.TaxYear))

	adjustments := s.calculateThrowbackAdjustments(data)

	factors := business.ApportionmentFactors{
		States:          make([]business.StateApportionment, 0, len(data.States)),
		CalculationDate: data.CalculationDate,
		TaxYear:         data.TaxYear,
	}

	total := decimal.Zero
	for _, stateCode := range data.States {
		adjustment := adjustments[stateCode]
		salesFactor := s.CalculateSalesFactor(stateCode, data.SalesFor(stateCode), data.TotalSales, adjustment)
		payrollFactor := s.CalculatePayrollFactor(stateCode, data.PayrollFor(stateCode), data.TotalPayroll)
		propertyFactor := s.CalculatePropertyFactor(stateCode, data.PropertyFor(stateCode), data.TotalProperty)
		percentage := s.CalculateApportionmentPercentage(stateCode, salesFactor, payrollFactor, propertyFactor)

		factors.States = append(factors.States, business.StateApportionment{
			StateCode:               stateCode,
			SalesFactor:             salesFactor,
			PayrollFactor:           payrollFactor,
			PropertyFactor:          propertyFactor,
			ApportionmentPercentage: percentage,
			ThrowbackAdjustment:     adjustment,
		})
		total = total.Add(percentage)
	}

	factors.TotalPercentage = total
	return factors
}

// DetermineFilingMethod recommends combined filing when any state in the
// filing mandates it, or when the heuristic policy trips; otherwise
// separate.
func (s *ApportionmentService) DetermineFilingMethod(states []string, totalIncome decimal.Decimal) business.FilingMethod {
	for _, stateCode := range states {
		if config, ok := s.registry.GetConfig(stateCode); ok && config.MandatesCombinedFiling {
			return business.FilingMethodCombined
		}
	}
	if len(states) > s.filingPolicy.MinStates && totalIncome.GreaterThan(s.filingPolicy.IncomeThreshold) {
		return business.FilingMethodCombined
	}
	return business.FilingMethodSeparate
}

// overApportionmentTolerance allows 1% of rounding slack before the
// over-100% warning fires.
var overApportionmentTolerance = decimal.RequireFromString("1.01")

// dominantStateThreshold flags a single state taking more than 90% of the
// apportionment, unusual for genuinely multi-state operations.
var dominantStateThreshold = decimal.RequireFromString("0.9")

// ValidateApportionmentFactors runs the advisory checks over a computed
// factor set. Warnings never block the computation; the factors are
// returned to the caller unmodified either way.
func (s *ApportionmentService) ValidateApportionmentFactors(factors business.ApportionmentFactors) []business.ValidationWarning {
	warnings := []business.ValidationWarning{}

	total := decimal.Zero
	for _, state := range factors.States {
		total = total.Add(state.ApportionmentPercentage)
	}
	if total.GreaterThan(overApportionmentTolerance) {
		warnings = append(warnings, business.ValidationWarning{
			Code:    business.WarnOverApportionment,
			Message: fmt.Sprintf("apportionment percentages sum to %s, exceeding 100%% beyond rounding tolerance", total.String()),
		})
	}

	for _, state := range factors.States {
		if state.ApportionmentPercentage.IsNegative() {
			warnings = append(warnings, business.ValidationWarning{
				Code:      business.WarnNegativeFactor,
				StateCode: state.StateCode,
				Message:   fmt.Sprintf("%s has a negative apportionment percentage of %s", state.StateCode, state.ApportionmentPercentage.String()),
			})
		}
		if state.ApportionmentPercentage.GreaterThan(dominantStateThreshold) {
			warnings = append(warnings, business.ValidationWarning{
				Code:      business.WarnDominantState,
				StateCode: state.StateCode,
				Message:   fmt.Sprintf("%s apportionment of %s exceeds 90%%, possible misallocation", state.StateCode, state.ApportionmentPercentage.String()),
			})
		}
	}

	return warnings
}

// CalculateStateTaxLiability applies the state's rates to the apportioned
// income, flooring the combined corporate and franchise tax at the state
// minimum.
func (s *ApportionmentService) CalculateStateTaxLiability(stateCode string, apportionedIncome decimal.Decimal) business.StateTaxLiability {
	rates := s.rates.GetStateTaxRates(stateCode)

	corporateTax := apportionedIncome.Mul(rates.CorporateRate).Round(2)
	franchiseTax := apportionedIncome.Mul(rates.FranchiseRate).Round(2)
	totalTax := corporateTax.Add(franchiseTax)
	if totalTax.LessThan(rates.MinimumTax) {
		totalTax = rates.MinimumTax
	}

	return business.StateTaxLiability{
		StateCode:         stateCode,
		ApportionedIncome: apportionedIncome,
		CorporateTax:      corporateTax,
		FranchiseTax:      franchiseTax,
		MinimumTax:        rates.MinimumTax,
		TotalTax:          totalTax,
	}
}
