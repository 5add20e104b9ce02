package params

import (
	"time"

	"github.com/shopspring/decimal"
)

// MultistateBusinessData is the inbound financial snapshot for apportionment
// and return processing. All monetary values are decimals; a missing per-state
// entry means zero.
type MultistateBusinessData struct {
	States []string

	TotalSales    decimal.Decimal
	TotalPayroll  decimal.Decimal
	TotalProperty decimal.Decimal
	TotalIncome   decimal.Decimal

	// NowhereSales is the pool of sales with no taxing nexus anywhere,
	// supplied explicitly by the caller rather than derived.
	NowhereSales decimal.Decimal

	StateSales    map[string]decimal.Decimal
	StatePayroll  map[string]decimal.Decimal
	StateProperty map[string]decimal.Decimal

	CalculationDate time.Time
	TaxYear         int
}

// SalesFor returns the recorded sales for a state, zero when absent.
func (d MultistateBusinessData) SalesFor(stateCode string) decimal.Decimal {
	return d.StateSales[stateCode]
}

// PayrollFor returns the recorded payroll for a state, zero when absent.
func (d MultistateBusinessData) PayrollFor(stateCode string) decimal.Decimal {
	return d.StatePayroll[stateCode]
}

// PropertyFor returns the recorded property for a state, zero when absent.
func (d MultistateBusinessData) PropertyFor(stateCode string) decimal.Decimal {
	return d.StateProperty[stateCode]
}
