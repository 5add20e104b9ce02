package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// NexusProfile is a persisted nexus profile row.
type NexusProfile struct {
	ID           uuid.UUID
	WorkspaceID  uuid.UUID
	BusinessName string
	HomeState    string
	TaxYear      int32
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BusinessActivity is a persisted business activity row. Activities are
// insert-only; they are never updated once written.
type BusinessActivity struct {
	ID           uuid.UUID
	ProfileID    uuid.UUID
	ActivityType string
	StateCode    string
	StartDate    time.Time
	EndDate      pgtype.Date
	Description  pgtype.Text
	AnnualValue  pgtype.Text // numeric stored as text to preserve precision
	CreatedAt    time.Time
}

// MultistateReturn is a persisted processed-return row. The full engine
// result is stored as a JSONB snapshot alongside the headline columns.
type MultistateReturn struct {
	ID           uuid.UUID
	ProfileID    uuid.UUID
	TaxYear      int32
	FilingMethod string
	TotalTaxDue  pgtype.Text
	Result       []byte
	Status       string
	CreatedAt    time.Time
}
