package services_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stateline/stateline-api/db"
	"github.com/stateline/stateline-api/services"
	"github.com/stateline/stateline-api/stateconfig"
	"github.com/stateline/stateline-api/testutil"
	"github.com/stateline/stateline-api/types/api/params"
	"github.com/stateline/stateline-api/types/business"
)

func newProfileService(querier db.Querier) *services.ProfileService {
	registry := stateconfig.NewRegistry()
	nexusService := services.NewNexusService(registry)
	apportionment := services.NewApportionmentService(registry, services.NewRateService())
	returns := services.NewMultistateReturnService(apportionment)
	return services.NewProfileService(querier, nexusService, returns)
}

func TestProfileService_CreateProfile(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	workspaceID := uuid.New()
	profileID := uuid.New()
	querier.On("CreateNexusProfile", mock.Anything, db.CreateNexusProfileParams{
		WorkspaceID:  workspaceID,
		BusinessName: "Acme Widgets",
		HomeState:    "CA",
		TaxYear:      2024,
	}).Return(db.NexusProfile{
		ID:           profileID,
		WorkspaceID:  workspaceID,
		BusinessName: "Acme Widgets",
		HomeState:    "CA",
		TaxYear:      2024,
	}, nil)

	profile, err := svc.CreateProfile(context.Background(), workspaceID, "Acme Widgets", "CA", 2024)
	require.NoError(t, err)
	assert.Equal(t, profileID, profile.ID)
	assert.Equal(t, 2024, profile.TaxYear)
	querier.AssertExpectations(t)
}

func TestProfileService_ListProfilesByTaxYear(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	querier.On("ListNexusProfilesByTaxYear", mock.Anything, int32(2024)).Return([]db.NexusProfile{
		{ID: uuid.New(), HomeState: "CA", TaxYear: 2024},
		{ID: uuid.New(), HomeState: "NY", TaxYear: 2024},
	}, nil)

	profiles, err := svc.ListProfilesByTaxYear(context.Background(), 2024)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, 2024, profiles[0].TaxYear)
	assert.Equal(t, "NY", profiles[1].HomeState)
	querier.AssertExpectations(t)
}

func TestProfileService_DeleteProfile(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	profileID := uuid.New()
	querier.On("DeleteNexusProfile", mock.Anything, profileID).Return(nil)

	require.NoError(t, svc.DeleteProfile(context.Background(), profileID))
	querier.AssertExpectations(t)
}

func TestProfileService_RecordActivity(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	profileID := uuid.New()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	value := decimal.RequireFromString("120000")

	querier.On("CreateBusinessActivity", mock.Anything, mock.MatchedBy(func(arg db.CreateBusinessActivityParams) bool {
		return arg.ProfileID == profileID &&
			arg.ActivityType == "office" &&
			arg.StateCode == "NY" &&
			arg.AnnualValue.Valid && arg.AnnualValue.String == "120000"
	})).Return(db.BusinessActivity{
		ID:           uuid.New(),
		ProfileID:    profileID,
		ActivityType: "office",
		StateCode:    "NY",
		StartDate:    start,
		AnnualValue:  pgtype.Text{String: "120000", Valid: true},
	}, nil)

	stored, err := svc.RecordActivity(context.Background(), business.BusinessActivity{
		ProfileID:    profileID,
		ActivityType: business.ActivityOffice,
		StateCode:    "NY",
		StartDate:    start,
		AnnualValue:  &value,
	})
	require.NoError(t, err)
	assert.Equal(t, business.ActivityOffice, stored.ActivityType)
	require.NotNil(t, stored.AnnualValue)
	assert.True(t, stored.AnnualValue.Equal(value))
	querier.AssertExpectations(t)
}

func TestProfileService_AnalyzeProfile(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	profileID := uuid.New()
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	querier.On("ListBusinessActivitiesByProfile", mock.Anything, profileID).Return([]db.BusinessActivity{
		{
			ID:           uuid.New(),
			ProfileID:    profileID,
			ActivityType: "office",
			StateCode:    "NY",
			StartDate:    start,
		},
	}, nil)

	financials := params.BusinessFinancials{
		StateSales: map[string]decimal.Decimal{"CA": decimal.RequireFromString("600000")},
	}
	statuses, err := svc.AnalyzeProfile(context.Background(), profileID, financials, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Contains(t, statuses, "NY")
	require.Contains(t, statuses, "CA")
	assert.True(t, statuses["NY"][business.TaxTypeIncome].HasNexus)
	querier.AssertExpectations(t)
}

func TestProfileService_ProcessAndStoreReturn(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	profileID := uuid.New()
	calcDate := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	data := params.MultistateBusinessData{
		States:      []string{"CA", "TX"},
		TotalSales:  decimal.RequireFromString("1000000"),
		TotalIncome: decimal.RequireFromString("400000"),
		StateSales: map[string]decimal.Decimal{
			"CA": decimal.RequireFromString("600000"),
			"TX": decimal.RequireFromString("400000"),
		},
		CalculationDate: calcDate,
		TaxYear:         2024,
	}

	var persisted db.CreateMultistateReturnParams
	querier.On("CreateMultistateReturn", mock.Anything, mock.MatchedBy(func(arg db.CreateMultistateReturnParams) bool {
		persisted = arg
		return arg.ProfileID == profileID && arg.TaxYear == 2024 && arg.Status == "processed"
	})).Return(db.MultistateReturn{ID: uuid.New(), ProfileID: profileID}, nil)

	result, err := svc.ProcessAndStoreReturn(context.Background(), profileID, data)
	require.NoError(t, err)
	assert.Equal(t, business.FilingMethodCombined, result.FilingMethod)

	// The stored snapshot round-trips back to the computed result.
	var snapshot business.MultistateReturnResult
	require.NoError(t, json.Unmarshal(persisted.Result, &snapshot))
	assert.Equal(t, result.FilingMethod, snapshot.FilingMethod)
	assert.True(t, snapshot.TotalTaxDue.Equal(result.TotalTaxDue))
	querier.AssertExpectations(t)
}

func storedReturnRow(t *testing.T, profileID uuid.UUID) db.MultistateReturn {
	t.Helper()
	snapshot, err := json.Marshal(business.MultistateReturnResult{
		FilingMethod: business.FilingMethodCombined,
		TotalTaxDue:  decimal.RequireFromString("88400"),
	})
	require.NoError(t, err)
	return db.MultistateReturn{
		ID:           uuid.New(),
		ProfileID:    profileID,
		TaxYear:      2024,
		FilingMethod: "combined",
		TotalTaxDue:  pgtype.Text{String: "88400", Valid: true},
		Result:       snapshot,
		Status:       "processed",
	}
}

func TestProfileService_GetReturn(t *testing.T) {
	t.Run("owned return round-trips the snapshot", func(t *testing.T) {
		querier := new(testutil.MockQuerier)
		svc := newProfileService(querier)

		profileID := uuid.New()
		row := storedReturnRow(t, profileID)
		querier.On("GetMultistateReturn", mock.Anything, row.ID).Return(row, nil)

		stored, err := svc.GetReturn(context.Background(), profileID, row.ID)
		require.NoError(t, err)
		assert.Equal(t, business.FilingMethodCombined, stored.FilingMethod)
		assert.Equal(t, 2024, stored.TaxYear)
		assert.True(t, stored.TotalTaxDue.Equal(decimal.RequireFromString("88400")))
		assert.Equal(t, business.FilingMethodCombined, stored.Result.FilingMethod)
		querier.AssertExpectations(t)
	})

	t.Run("return under another profile reads as not found", func(t *testing.T) {
		querier := new(testutil.MockQuerier)
		svc := newProfileService(querier)

		row := storedReturnRow(t, uuid.New())
		querier.On("GetMultistateReturn", mock.Anything, row.ID).Return(row, nil)

		_, err := svc.GetReturn(context.Background(), uuid.New(), row.ID)
		require.Error(t, err)
		assert.ErrorIs(t, err, pgx.ErrNoRows)
	})
}

func TestProfileService_ListReturns(t *testing.T) {
	querier := new(testutil.MockQuerier)
	svc := newProfileService(querier)

	profileID := uuid.New()
	querier.On("ListMultistateReturnsByProfile", mock.Anything, profileID).Return([]db.MultistateReturn{
		storedReturnRow(t, profileID),
		storedReturnRow(t, profileID),
	}, nil)

	returns, err := svc.ListReturns(context.Background(), profileID)
	require.NoError(t, err)
	require.Len(t, returns, 2)
	for _, stored := range returns {
		assert.Equal(t, profileID, stored.ProfileID)
		assert.Equal(t, "processed", stored.Status)
		assert.True(t, stored.TotalTaxDue.Equal(stored.Result.TotalTaxDue))
	}
	querier.AssertExpectations(t)
}
