package db

import (
	"context"

	"github.com/google/uuid"
)

// Querier is the query surface consumed by services and handlers. Tests
// substitute a fake; production uses *Queries over a pgx pool.
type Querier interface {
	CreateNexusProfile(ctx context.Context, arg CreateNexusProfileParams) (NexusProfile, error)
	GetNexusProfile(ctx context.Context, id uuid.UUID) (NexusProfile, error)
	ListNexusProfilesByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]NexusProfile, error)
	ListNexusProfilesByTaxYear(ctx context.Context, taxYear int32) ([]NexusProfile, error)
	DeleteNexusProfile(ctx context.Context, id uuid.UUID) error

	CreateBusinessActivity(ctx context.Context, arg CreateBusinessActivityParams) (BusinessActivity, error)
	ListBusinessActivitiesByProfile(ctx context.Context, profileID uuid.UUID) ([]BusinessActivity, error)

	CreateMultistateReturn(ctx context.Context, arg CreateMultistateReturnParams) (MultistateReturn, error)
	GetMultistateReturn(ctx context.Context, id uuid.UUID) (MultistateReturn, error)
	ListMultistateReturnsByProfile(ctx context.Context, profileID uuid.UUID) ([]MultistateReturn, error)
}

var _ Querier = (*Queries)(nil)
