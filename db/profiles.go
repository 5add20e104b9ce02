package db

import (
	"context"

	"github.com/google/uuid"
)

// CreateNexusProfileParams are the inputs for inserting a profile.
type CreateNexusProfileParams struct {
	WorkspaceID  uuid.UUID
	BusinessName string
	HomeState    string
	TaxYear      int32
}

const createNexusProfile = `
INSERT INTO nexus_profiles (workspace_id, business_name, home_state, tax_year)
VALUES ($1, $2, $3, $4)
RETURNING id, workspace_id, business_name, home_state, tax_year, created_at, updated_at
`

func (q *Queries) CreateNexusProfile(ctx context.Context, arg CreateNexusProfileParams) (NexusProfile, error) {
	var p NexusProfile
	err := q.db.QueryRow(ctx, createNexusProfile,
		arg.WorkspaceID, arg.BusinessName, arg.HomeState, arg.TaxYear,
	).Scan(&p.ID, &p.WorkspaceID, &p.BusinessName, &p.HomeState, &p.TaxYear, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const getNexusProfile = `
SELECT id, workspace_id, business_name, home_state, tax_year, created_at, updated_at
FROM nexus_profiles
WHERE id = $1
`

func (q *Queries) GetNexusProfile(ctx context.Context, id uuid.UUID) (NexusProfile, error) {
	var p NexusProfile
	err := q.db.QueryRow(ctx, getNexusProfile, id).
		Scan(&p.ID, &p.WorkspaceID, &p.BusinessName, &p.HomeState, &p.TaxYear, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

const listNexusProfilesByWorkspace = `
SELECT id, workspace_id, business_name, home_state, tax_year, created_at, updated_at
FROM nexus_profiles
WHERE workspace_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListNexusProfilesByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]NexusProfile, error) {
	rows, err := q.db.Query(ctx, listNexusProfilesByWorkspace, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []NexusProfile
	for rows.Next() {
		var p NexusProfile
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.BusinessName, &p.HomeState, &p.TaxYear, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

const listNexusProfilesByTaxYear = `
SELECT id, workspace_id, business_name, home_state, tax_year, created_at, updated_at
FROM nexus_profiles
WHERE tax_year = $1
ORDER BY created_at
`

func (q *Queries) ListNexusProfilesByTaxYear(ctx context.Context, taxYear int32) ([]NexusProfile, error) {
	rows, err := q.db.Query(ctx, listNexusProfilesByTaxYear, taxYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []NexusProfile
	for rows.Next() {
		var p NexusProfile
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.BusinessName, &p.HomeState, &p.TaxYear, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

const deleteNexusProfile = `
DELETE FROM nexus_profiles WHERE id = $1
`

func (q *Queries) DeleteNexusProfile(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, deleteNexusProfile, id)
	return err
}
