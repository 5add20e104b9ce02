package params

import (
	"github.com/shopspring/decimal"
)

// BusinessFinancials is the per-state financial picture used for nexus
// determination. Missing entries mean zero; transaction counts and dollar
// volumes are tracked independently per state.
type BusinessFinancials struct {
	StateSales        map[string]decimal.Decimal
	StateTransactions map[string]int64
	StatePayroll      map[string]decimal.Decimal
	StateProperty     map[string]decimal.Decimal
}

// SalesFor returns the recorded sales for a state, zero when absent.
func (f BusinessFinancials) SalesFor(stateCode string) decimal.Decimal {
	return f.StateSales[stateCode]
}

// TransactionsFor returns the recorded transaction count for a state.
func (f BusinessFinancials) TransactionsFor(stateCode string) int64 {
	return f.StateTransactions[stateCode]
}

// StateSet returns the set of states referenced anywhere in the financial
// data, across sales, transactions, payroll, and property entries.
func (f BusinessFinancials) StateSet() map[string]bool {
	states := make(map[string]bool)
	for s := range f.StateSales {
		states[s] = true
	}
	for s := range f.StateTransactions {
		states[s] = true
	}
	for s := range f.StatePayroll {
		states[s] = true
	}
	for s := range f.StateProperty {
		states[s] = true
	}
	return states
}
