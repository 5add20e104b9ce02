package business

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActivityType categorizes a physical business activity within a state.
type ActivityType string

const (
	ActivityOffice                ActivityType = "office"
	ActivityWarehouse             ActivityType = "warehouse"
	ActivityRetailLocation        ActivityType = "retail_location"
	ActivityEmployee              ActivityType = "employee"
	ActivityIndependentContractor ActivityType = "independent_contractor"
	ActivitySalesRep              ActivityType = "sales_rep"
	ActivityRepairInstallation    ActivityType = "repair_installation"
	ActivityTradeShow             ActivityType = "trade_show"
	ActivityDelivery              ActivityType = "delivery"
	ActivityPropertyOwnership     ActivityType = "property_ownership"
	ActivityInventoryStorage      ActivityType = "inventory_storage"
)

// nexusCreatingActivities is the default rule set for which activity types
// establish physical presence nexus. Independent contractors, sales reps,
// trade shows, and deliveries are excluded, reflecting common legal
// protections (P.L. 86-272 style safe harbors).
var nexusCreatingActivities = map[ActivityType]bool{
	ActivityOffice:             true,
	ActivityWarehouse:          true,
	ActivityRetailLocation:     true,
	ActivityEmployee:           true,
	ActivityRepairInstallation: true,
	ActivityPropertyOwnership:  true,
	ActivityInventoryStorage:   true,
}

// CreatesNexus reports whether this activity type establishes physical
// presence nexus under the default rule set.
func (t ActivityType) CreatesNexus() bool {
	return nexusCreatingActivities[t]
}

// IsValid reports whether the activity type is a known value.
func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityOffice, ActivityWarehouse, ActivityRetailLocation,
		ActivityEmployee, ActivityIndependentContractor, ActivitySalesRep,
		ActivityRepairInstallation, ActivityTradeShow, ActivityDelivery,
		ActivityPropertyOwnership, ActivityInventoryStorage:
		return true
	}
	return false
}

// BusinessActivity is an immutable record of a single in-state business
// activity. Activities are created once and never mutated; whether one is
// "active" is derived from its date range at evaluation time.
type BusinessActivity struct {
	ID           uuid.UUID        `json:"id"`
	ProfileID    uuid.UUID        `json:"profile_id"`
	ActivityType ActivityType     `json:"activity_type"`
	StateCode    string           `json:"state_code"`
	StartDate    time.Time        `json:"start_date"`
	EndDate      *time.Time       `json:"end_date,omitempty"`
	Description  string           `json:"description,omitempty"`
	AnnualValue  *decimal.Decimal `json:"annual_value,omitempty"`
}

// IsActiveOn reports whether the activity was in effect on the given date.
// An activity with no end date remains active indefinitely.
func (a BusinessActivity) IsActiveOn(date time.Time) bool {
	if date.Before(a.StartDate) {
		return false
	}
	if a.EndDate != nil && date.After(*a.EndDate) {
		return false
	}
	return true
}

// NexusProfile is the logical parent of a set of business activities. The
// profile itself is persisted by the storage layer; engines only ever see
// the activities it owns.
type NexusProfile struct {
	ID           uuid.UUID `json:"id"`
	WorkspaceID  uuid.UUID `json:"workspace_id"`
	BusinessName string    `json:"business_name"`
	HomeState    string    `json:"home_state"`
	TaxYear      int       `json:"tax_year"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
