package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stateline/stateline-api/constants"
	"github.com/stateline/stateline-api/db"
	"github.com/stateline/stateline-api/logger"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
	"go.uber.org/zap"
)

// ProfileService owns the persisted side of nexus profiles: profile and
// activity storage, plus the composition of stored activities with the pure
// engines. Engines stay persistence-free; this service is the bridge.
type ProfileService struct {
	queries      db.Querier
	nexusService *NexusService
	returns      *MultistateReturnService
	logger       *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(queries db.Querier, nexusService *NexusService, returns *MultistateReturnService) *ProfileService {
	return &ProfileService{
		queries:      queries,
		nexusService: nexusService,
		returns:      returns,
		logger:       logger.Log,
	}
}

// CreateProfile persists a new nexus profile.
func (s *ProfileService) CreateProfile(ctx context.Context, workspaceID uuid.UUID, businessName, homeState string, taxYear int) (business.NexusProfile, error) {
	row, err := s.queries.CreateNexusProfile(ctx, db.CreateNexusProfileParams{
		WorkspaceID:  workspaceID,
		BusinessName: businessName,
		HomeState:    homeState,
		TaxYear:      int32(taxYear),
	})
	if err != nil {
		return business.NexusProfile{}, fmt.Errorf("failed to create nexus profile: %w", err)
	}
	return toProfile(row), nil
}

// GetProfile loads a profile by ID.
func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (business.NexusProfile, error) {
	row, err := s.queries.GetNexusProfile(ctx, id)
	if err != nil {
		return business.NexusProfile{}, fmt.Errorf("failed to get nexus profile: %w", err)
	}
	return toProfile(row), nil
}

// ListProfiles loads all profiles in a workspace.
func (s *ProfileService) ListProfiles(ctx context.Context, workspaceID uuid.UUID) ([]business.NexusProfile, error) {
	rows, err := s.queries.ListNexusProfilesByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list nexus profiles: %w", err)
	}
	profiles := make([]business.NexusProfile, len(rows))
	for i, row := range rows {
		profiles[i] = toProfile(row)
	}
	return profiles, nil
}

// ListProfilesByTaxYear loads every profile registered for a tax year,
// oldest first. The return processor uses this for recalculation sweeps.
func (s *ProfileService) ListProfilesByTaxYear(ctx context.Context, taxYear int) ([]business.NexusProfile, error) {
	rows, err := s.queries.ListNexusProfilesByTaxYear(ctx, int32(taxYear))
	if err != nil {
		return nil, fmt.Errorf("failed to list nexus profiles for tax year %d: %w", taxYear, err)
	}
	profiles := make([]business.NexusProfile, len(rows))
	for i, row := range rows {
		profiles[i] = toProfile(row)
	}
	return profiles, nil
}

// DeleteProfile removes a profile. Its activities and stored returns go with
// it via the cascade on profile_id.
func (s *ProfileService) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	if err := s.queries.DeleteNexusProfile(ctx, id); err != nil {
		return fmt.Errorf("failed to delete nexus profile: %w", err)
	}
	s.logger.Info("Deleted nexus profile", zap.String("profile_id", id.String()))
	return nil
}

// RecordActivity persists a new business activity under a profile.
// Activities are append-only; there is no update path.
func (s *ProfileService) RecordActivity(ctx context.Context, activity business.BusinessActivity) (business.BusinessActivity, error) {
	arg := db.CreateBusinessActivityParams{
		ProfileID:    activity.ProfileID,
		ActivityType: string(activity.ActivityType),
		StateCode:    activity.StateCode,
		StartDate:    pgtype.Date{Time: activity.StartDate, Valid: true},
	}
	if activity.EndDate != nil {
		arg.EndDate = pgtype.Date{Time: *activity.EndDate, Valid: true}
	}
	if activity.Description != "" {
		arg.Description = pgtype.Text{String: activity.Description, Valid: true}
	}
	if activity.AnnualValue != nil {
		arg.AnnualValue = pgtype.Text{String: activity.AnnualValue.String(), Valid: true}
	}

	row, err := s.queries.CreateBusinessActivity(ctx, arg)
	if err != nil {
		return business.BusinessActivity{}, fmt.Errorf("failed to record business activity: %w", err)
	}
	return toActivity(row)
}

// ListActivities loads all activities recorded under a profile.
func (s *ProfileService) ListActivities(ctx context.Context, profileID uuid.UUID) ([]business.BusinessActivity, error) {
	rows, err := s.queries.ListBusinessActivitiesByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list business activities: %w", err)
	}
	activities := make([]business.BusinessActivity, 0, len(rows))
	for _, row := range rows {
		activity, err := toActivity(row)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, nil
}

// AnalyzeProfile loads a profile's stored activities and runs the full nexus
// evaluation against the supplied financials.
func (s *ProfileService) AnalyzeProfile(ctx context.Context, profileID uuid.UUID, financials params.BusinessFinancials, asOfDate time.Time) (map[string]map[business.TaxType]business.NexusStatus, error) {
	activities, err := s.ListActivities(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.nexusService.GetAllNexusStatus(activities, financials, asOfDate), nil
}

// ProcessAndStoreReturn runs the return orchestration for a profile and
// persists the result snapshot.
func (s *ProfileService) ProcessAndStoreReturn(ctx context.Context, profileID uuid.UUID, data params.MultistateBusinessData) (business.MultistateReturnResult, error) {
	result := s.returns.ProcessMultistateReturn(data)

	snapshot, err := json.Marshal(result)
	if err != nil {
		return business.MultistateReturnResult{}, fmt.Errorf("failed to marshal return result: %w", err)
	}

	_, err = s.queries.CreateMultistateReturn(ctx, db.CreateMultistateReturnParams{
		ProfileID:    profileID,
		TaxYear:      int32(data.TaxYear),
		FilingMethod: string(result.FilingMethod),
		TotalTaxDue:  pgtype.Text{String: result.TotalTaxDue.String(), Valid: true},
		Result:       snapshot,
		Status:       constants.ProcessedStatus,
	})
	if err != nil {
		return business.MultistateReturnResult{}, fmt.Errorf("failed to store multistate return: %w", err)
	}

	s.logger.Info("Stored multistate return",
		zap.String("profile_id", profileID.String()),
		zap.Int("tax_year", data.TaxYear),
		zap.String("filing_method", string(result.FilingMethod)),
		zap.String("total_tax_due", result.TotalTaxDue.String()))

	return result, nil
}

// GetReturn loads one stored return snapshot. A return that exists but
// belongs to a different profile is reported as not found.
func (s *ProfileService) GetReturn(ctx context.Context, profileID, returnID uuid.UUID) (business.StoredReturn, error) {
	row, err := s.queries.GetMultistateReturn(ctx, returnID)
	if err != nil {
		return business.StoredReturn{}, fmt.Errorf("failed to get multistate return: %w", err)
	}
	if row.ProfileID != profileID {
		return business.StoredReturn{}, fmt.Errorf("return %s not found under profile %s: %w", returnID, profileID, pgx.ErrNoRows)
	}
	return toStoredReturn(row)
}

// ListReturns loads the stored returns for a profile, newest first.
func (s *ProfileService) ListReturns(ctx context.Context, profileID uuid.UUID) ([]business.StoredReturn, error) {
	rows, err := s.queries.ListMultistateReturnsByProfile(ctx, profileID)
	if err != nil {
		return nil, fmt.Errorf("failed to list multistate returns: %w", err)
	}
	returns := make([]business.StoredReturn, 0, len(rows))
	for _, row := range rows {
		stored, err := toStoredReturn(row)
		if err != nil {
			return nil, err
		}
		returns = append(returns, stored)
	}
	return returns, nil
}

func toProfile(row db.NexusProfile) business.NexusProfile {
	return business.NexusProfile{
		ID:           row.ID,
		WorkspaceID:  row.WorkspaceID,
		BusinessName: row.BusinessName,
		HomeState:    row.HomeState,
		TaxYear:      int(row.TaxYear),
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}
}

func toStoredReturn(row db.MultistateReturn) (business.StoredReturn, error) {
	stored := business.StoredReturn{
		ID:           row.ID,
		ProfileID:    row.ProfileID,
		TaxYear:      int(row.TaxYear),
		FilingMethod: business.FilingMethod(row.FilingMethod),
		Status:       row.Status,
		CreatedAt:    row.CreatedAt,
	}
	if row.TotalTaxDue.Valid {
		total, err := decimal.NewFromString(row.TotalTaxDue.String)
		if err != nil {
			return business.StoredReturn{}, fmt.Errorf("invalid stored total tax for return %s: %w", row.ID, err)
		}
		stored.TotalTaxDue = total
	}
	if len(row.Result) > 0 {
		if err := json.Unmarshal(row.Result, &stored.Result); err != nil {
			return business.StoredReturn{}, fmt.Errorf("invalid stored result snapshot for return %s: %w", row.ID, err)
		}
	}
	return stored, nil
}

func toActivity(row db.BusinessActivity) (business.BusinessActivity, error) {
	activity := business.BusinessActivity{
		ID:           row.ID,
		ProfileID:    row.ProfileID,
		ActivityType: business.ActivityType(row.ActivityType),
		StateCode:    row.StateCode,
		StartDate:    row.StartDate,
	}
	if row.EndDate.Valid {
		end := row.EndDate.Time
		activity.EndDate = &end
	}
	if row.Description.Valid {
		activity.Description = row.Description.String
	}
	if row.AnnualValue.Valid {
		value, err := decimal.NewFromString(row.AnnualValue.String)
		if err != nil {
			return business.BusinessActivity{}, fmt.Errorf("invalid stored annual value for activity %s: %w", row.ID, err)
		}
		activity.AnnualValue = &value
	}
	return activity, nil
}
