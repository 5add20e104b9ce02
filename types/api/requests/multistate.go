package requests

import (
	"github.com/shopspring/decimal"
)

// Dates in request payloads are ISO dates ("2006-01-02"); handlers parse and
// reject malformed values before anything reaches the engines.

// FinancialsPayload is the per-state financial picture in inbound requests.
// Missing entries mean zero; malformed decimals are rejected at bind time.
type FinancialsPayload struct {
	StateSales        map[string]decimal.Decimal `json:"state_sales"`
	StateTransactions map[string]int64           `json:"state_transactions"`
	StatePayroll      map[string]decimal.Decimal `json:"state_payroll"`
	StateProperty     map[string]decimal.Decimal `json:"state_property"`
}

// ActivityPayload is an inbound business activity record.
type ActivityPayload struct {
	ActivityType string           `json:"activity_type" binding:"required"`
	StateCode    string           `json:"state_code" binding:"required"`
	StartDate    string           `json:"start_date" binding:"required"`
	EndDate      *string          `json:"end_date,omitempty"`
	Description  string           `json:"description,omitempty"`
	AnnualValue  *decimal.Decimal `json:"annual_value,omitempty"`
}

// EconomicNexusCheckRequest asks for a sales-tax economic nexus check.
type EconomicNexusCheckRequest struct {
	StateCode        string          `json:"state_code" binding:"required"`
	SalesAmount      decimal.Decimal `json:"sales_amount"`
	TransactionCount int64           `json:"transaction_count"`
	AsOfDate         string          `json:"as_of_date" binding:"required"`
}

// PhysicalPresenceCheckRequest asks for a physical presence nexus check.
type PhysicalPresenceCheckRequest struct {
	StateCode  string            `json:"state_code" binding:"required"`
	Activities []ActivityPayload `json:"activities"`
	AsOfDate   string            `json:"as_of_date" binding:"required"`
}

// IncomeTaxNexusCheckRequest asks for an income-tax nexus check.
type IncomeTaxNexusCheckRequest struct {
	StateCode  string            `json:"state_code" binding:"required"`
	Activities []ActivityPayload `json:"activities"`
	Financials FinancialsPayload `json:"financials"`
	AsOfDate   string            `json:"as_of_date" binding:"required"`
}

// NexusStatusRequest asks for the full nexus evaluation across all
// candidate states.
type NexusStatusRequest struct {
	Activities []ActivityPayload `json:"activities"`
	Financials FinancialsPayload `json:"financials"`
	AsOfDate   string            `json:"as_of_date" binding:"required"`
}

// ThresholdMonitorRequest asks for threshold proximity warnings.
type ThresholdMonitorRequest struct {
	Financials         FinancialsPayload `json:"financials"`
	ProximityThreshold *decimal.Decimal  `json:"proximity_threshold,omitempty"`
}

// NexusValidationRequest asks for the advisory data sanity checks.
type NexusValidationRequest struct {
	Activities []ActivityPayload `json:"activities"`
	Financials FinancialsPayload `json:"financials"`
}

// MultistateBusinessDataRequest is the financial snapshot for apportionment
// and return processing.
type MultistateBusinessDataRequest struct {
	States          []string                   `json:"states" binding:"required"`
	TotalSales      decimal.Decimal            `json:"total_sales"`
	TotalPayroll    decimal.Decimal            `json:"total_payroll"`
	TotalProperty   decimal.Decimal            `json:"total_property"`
	TotalIncome     decimal.Decimal            `json:"total_income"`
	NowhereSales    decimal.Decimal            `json:"nowhere_sales"`
	StateSales      map[string]decimal.Decimal `json:"state_sales"`
	StatePayroll    map[string]decimal.Decimal `json:"state_payroll"`
	StateProperty   map[string]decimal.Decimal `json:"state_property"`
	CalculationDate string                     `json:"calculation_date" binding:"required"`
	TaxYear         int                        `json:"tax_year" binding:"required"`
}

// CreateProfileRequest creates a nexus profile.
type CreateProfileRequest struct {
	WorkspaceID  string `json:"workspace_id" binding:"required"`
	BusinessName string `json:"business_name" binding:"required"`
	HomeState    string `json:"home_state" binding:"required"`
	TaxYear      int    `json:"tax_year" binding:"required"`
}
