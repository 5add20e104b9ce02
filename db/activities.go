package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CreateBusinessActivityParams are the inputs for recording an activity.
type CreateBusinessActivityParams struct {
	ProfileID    uuid.UUID
	ActivityType string
	StateCode    string
	StartDate    pgtype.Date
	EndDate      pgtype.Date
	Description  pgtype.Text
	AnnualValue  pgtype.Text
}

const createBusinessActivity = `
INSERT INTO business_activities (profile_id, activity_type, state_code, start_date, end_date, description, annual_value)
VALUES ($1, $2, $3, $4, $5, $6, $7::numeric)
RETURNING id, profile_id, activity_type, state_code, start_date, end_date, description, annual_value::text, created_at
`

func (q *Queries) CreateBusinessActivity(ctx context.Context, arg CreateBusinessActivityParams) (BusinessActivity, error) {
	var a BusinessActivity
	err := q.db.QueryRow(ctx, createBusinessActivity,
		arg.ProfileID, arg.ActivityType, arg.StateCode, arg.StartDate, arg.EndDate, arg.Description, arg.AnnualValue,
	).Scan(&a.ID, &a.ProfileID, &a.ActivityType, &a.StateCode, &a.StartDate, &a.EndDate, &a.Description, &a.AnnualValue, &a.CreatedAt)
	return a, err
}

const listBusinessActivitiesByProfile = `
SELECT id, profile_id, activity_type, state_code, start_date, end_date, description, annual_value::text, created_at
FROM business_activities
WHERE profile_id = $1
ORDER BY start_date
`

func (q *Queries) ListBusinessActivitiesByProfile(ctx context.Context, profileID uuid.UUID) ([]BusinessActivity, error) {
	rows, err := q.db.Query(ctx, listBusinessActivitiesByProfile, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []BusinessActivity
	for rows.Next() {
		var a BusinessActivity
		if err := rows.Scan(&a.ID, &a.ProfileID, &a.ActivityType, &a.StateCode, &a.StartDate, &a.EndDate, &a.Description, &a.AnnualValue, &a.CreatedAt); err != nil {
			return nil, err
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
