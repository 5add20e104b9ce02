package services

import (
	"github.com/stateline/stateline-api/types/business"
)

// RateService resolves per-state corporate and franchise tax rates for
// liability estimates. The embedded table ships with zero rates: real
// per-state corporate rate data must be sourced and loaded by the operator
// before liabilities are materially correct. The liability mechanism
// (weighted max-with-floor) works identically either way.
type RateService struct {
	table map[string]business.StateTaxRates
}

// NewRateService creates a rate service with the placeholder zero-rate table.
func NewRateService() *RateService {
	return &RateService{table: map[string]business.StateTaxRates{}}
}

// NewRateServiceWithTable creates a rate service backed by an
// operator-supplied rate table keyed by state code.
func NewRateServiceWithTable(table map[string]business.StateTaxRates) *RateService {
	copied := make(map[string]business.StateTaxRates, len(table))
	for stateCode, rates := range table {
		copied[stateCode] = rates
	}
	return &RateService{table: copied}
}

// GetStateTaxRates returns the rates for a state. Unknown states get
// zero-value rates; an absent rate row is not an error.
func (s *RateService) GetStateTaxRates(stateCode string) business.StateTaxRates {
	return s.table[stateCode]
}
