// Package interfaces defines the service contracts consumed by the handler
// layer, so handlers can be tested against fakes.
package interfaces

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
)

// NexusService determines nexus per state and tax type.
type NexusService interface {
	CheckEconomicNexus(stateCode string, salesAmount decimal.Decimal, transactionCount int64, asOfDate time.Time) business.NexusStatus
	CheckPhysicalPresenceNexus(stateCode string, activities []business.BusinessActivity, asOfDate time.Time) business.NexusStatus
	CheckIncomeTaxNexus(stateCode string, activities []business.BusinessActivity, financials params.BusinessFinancials, asOfDate time.Time) business.NexusStatus
	GetAllNexusStatus(activities []business.BusinessActivity, financials params.BusinessFinancials, asOfDate time.Time) map[string]map[business.TaxType]business.NexusStatus
	MonitorThresholdProximity(financials params.BusinessFinancials, proximityThreshold decimal.Decimal) map[string][]business.ThresholdProximityWarning
	ValidateNexusData(activities []business.BusinessActivity, financials params.BusinessFinancials) []business.ValidationWarning
}

// ApportionmentService computes factors, percentages, and liabilities.
type ApportionmentService interface {
	CalculateSalesFactor(stateCode string, stateSales, totalSales, throwbackSales decimal.Decimal) decimal.Decimal
	CalculatePayrollFactor(stateCode string, statePayroll, totalPayroll decimal.Decimal) decimal.Decimal
	CalculatePropertyFactor(stateCode string, stateProperty, totalProperty decimal.Decimal) decimal.Decimal
	CalculateApportionmentPercentage(stateCode string, salesFactor, payrollFactor, propertyFactor decimal.Decimal) decimal.Decimal
	CalculateMultistateApportionment(data params.MultistateBusinessData) business.ApportionmentFactors
	DetermineFilingMethod(states []string, totalIncome decimal.Decimal) business.FilingMethod
	ValidateApportionmentFactors(factors business.ApportionmentFactors) []business.ValidationWarning
	CalculateStateTaxLiability(stateCode string, apportionedIncome decimal.Decimal) business.StateTaxLiability
}

// MultistateReturnService orchestrates a complete filing recommendation.
type MultistateReturnService interface {
	ProcessMultistateReturn(data params.MultistateBusinessData) business.MultistateReturnResult
}

// ProfileService manages persisted profiles and activities and composes
// them with the engines.
type ProfileService interface {
	CreateProfile(ctx context.Context, workspaceID uuid.UUID, businessName, homeState string, taxYear int) (business.NexusProfile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (business.NexusProfile, error)
	ListProfiles(ctx context.Context, workspaceID uuid.UUID) ([]business.NexusProfile, error)
	ListProfilesByTaxYear(ctx context.Context, taxYear int) ([]business.NexusProfile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
	RecordActivity(ctx context.Context, activity business.BusinessActivity) (business.BusinessActivity, error)
	ListActivities(ctx context.Context, profileID uuid.UUID) ([]business.BusinessActivity, error)
	AnalyzeProfile(ctx context.Context, profileID uuid.UUID, financials params.BusinessFinancials, asOfDate time.Time) (map[string]map[business.TaxType]business.NexusStatus, error)
	ProcessAndStoreReturn(ctx context.Context, profileID uuid.UUID, data params.MultistateBusinessData) (business.MultistateReturnResult, error)
	GetReturn(ctx context.Context, profileID, returnID uuid.UUID) (business.StoredReturn, error)
	ListReturns(ctx context.Context, profileID uuid.UUID) ([]business.StoredReturn, error)
}
