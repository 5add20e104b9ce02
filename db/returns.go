package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateMultistateReturnParams are the inputs for persisting a processed
// return, including the full engine result as a JSONB snapshot.
type CreateMultistateReturnParams struct {
	ProfileID    uuid.UUID
	TaxYear      int32
	FilingMethod string
	TotalTaxDue  pgtype.Text
	Result       []byte
	Status       string
}

const createMultistateReturn = `
INSERT INTO multistate_returns (profile_id, tax_year, filing_method, total_tax_due, result, status)
VALUES ($1, $2, $3, $4::numeric, $5, $6)
RETURNING id, profile_id, tax_year, filing_method, total_tax_due::text, result, status, created_at
`

func (q *Queries) CreateMultistateReturn(ctx context.Context, arg CreateMultistateReturnParams) (MultistateReturn, error) {
	var r MultistateReturn
	err := q.db.QueryRow(ctx, createMultistateReturn,
		arg.ProfileID, arg.TaxYear, arg.FilingMethod, arg.TotalTaxDue, arg.Result, arg.Status,
	).Scan(&r.ID, &r.ProfileID, &r.TaxYear, &r.FilingMethod, &r.TotalTaxDue, &r.Result, &r.Status, &r.CreatedAt)
	return r, err
}

const getMultistateReturn = `
SELECT id, profile_id, tax_year, filing_method, total_tax_due::text, result, status, created_at
FROM multistate_returns
WHERE id = $1
`

func (q *Queries) GetMultistateReturn(ctx context.Context, id uuid.UUID) (MultistateReturn, error) {
	var r MultistateReturn
	err := q.db.QueryRow(ctx, getMultistateReturn, id).
		Scan(&r.ID, &r.ProfileID, &r.TaxYear, &r.FilingMethod, &r.TotalTaxDue, &r.Result, &r.Status, &r.CreatedAt)
	return r, err
}

const listMultistateReturnsByProfile = `
SELECT id, profile_id, tax_year, filing_method, total_tax_due::text, result, status, created_at
FROM multistate_returns
WHERE profile_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListMultistateReturnsByProfile(ctx context.Context, profileID uuid.UUID) ([]MultistateReturn, error) {
	rows, err := q.db.Query(ctx, listMultistateReturnsByProfile, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var returns []MultistateReturn
	for rows.Next() {
		var r MultistateReturn
		if err := rows.Scan(&r.ID, &r.ProfileID, &r.TaxYear, &r.FilingMethod, &r.TotalTaxDue, &r.Result, &r.Status, &r.CreatedAt); err != nil {
			return nil, err
		}
		returns = append(returns, r)
	}
	return returns, rows.Err()
}
