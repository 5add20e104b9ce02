package services

import (
	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
	"go.uber.org/zap"
)

// MultistateReturnService ties apportionment and liability computation
// together into a single filing recommendation. Nexus determination is a
// separate, prior step: the caller decides which states belong in the
// business data before apportionment runs, because apportionment math is
// meaningless for a state without established nexus.
type MultistateReturnService struct {
	apportionment *ApportionmentService
	logger        *zap.Logger
}

// NewMultistateReturnService creates a new multistate return service
func NewMultistateReturnService(apportionment *ApportionmentService) *MultistateReturnService {
	return &MultistateReturnService{
		apportionment: apportionment,
		logger:        logger.Log,
	}
}

// ProcessMultistateReturn assembles the complete return: apportionment
// factors, advisory validation, per-state liabilities, filing method, and
// the total tax due. The result is a pure value snapshot handed back to the
// caller for persistence.
func (s *MultistateReturnService) ProcessMultistateReturn(data params.MultistateBusinessData) business.MultistateReturnResult {
	s.logger.Info("Processing multistate return",
		zap.Int("state_count", len(data.States)),
		zap.Int("tax_year", data.TaxYear),
		zap.String("total_income", data.TotalIncome.String()))

	factors := s.apportionment.CalculateMultistateApportionment(data)
	warnings := s.apportionment.ValidateApportionmentFactors(factors)

	liabilities := make(map[string]business.StateTaxLiability, len(factors.States))
	totalTaxDue := decimal.Zero
	for _, state := range factors.States {
		apportionedIncome := data.TotalIncome.Mul(state.ApportionmentPercentage).Round(2)
		liability := s.apportionment.CalculateStateTaxLiability(state.StateCode, apportionedIncome)
		liability.ApportionmentPercentage = state.ApportionmentPercentage
		liabilities[state.StateCode] = liability
		totalTaxDue = totalTaxDue.Add(liability.TotalTax)
	}

	filingMethod := s.apportionment.DetermineFilingMethod(data.States, data.TotalIncome)

	return business.MultistateReturnResult{
		FilingMethod:       filingMethod,
		Factors:            factors,
		StateLiabilities:   liabilities,
		TotalTaxDue:        totalTaxDue,
		ValidationWarnings: warnings,
		CalculatedAt:       data.CalculationDate,
	}
}
