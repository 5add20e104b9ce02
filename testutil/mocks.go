package testutil

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/stateline/stateline-api/db"
)

// MockQuerier provides a mock for the database query surface
type MockQuerier struct {
	mock.Mock
}

var _ db.Querier = (*MockQuerier)(nil)

func (m *MockQuerier) CreateNexusProfile(ctx context.Context, arg db.CreateNexusProfileParams) (db.NexusProfile, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.NexusProfile), args.Error(1)
}

func (m *MockQuerier) GetNexusProfile(ctx context.Context, id uuid.UUID) (db.NexusProfile, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.NexusProfile), args.Error(1)
}

func (m *MockQuerier) ListNexusProfilesByWorkspace(ctx context.Context, workspaceID uuid.UUID) ([]db.NexusProfile, error) {
	args := m.Called(ctx, workspaceID)
	return args.Get(0).([]db.NexusProfile), args.Error(1)
}

func (m *MockQuerier) ListNexusProfilesByTaxYear(ctx context.Context, taxYear int32) ([]db.NexusProfile, error) {
	args := m.Called(ctx, taxYear)
	return args.Get(0).([]db.NexusProfile), args.Error(1)
}

func (m *MockQuerier) DeleteNexusProfile(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuerier) CreateBusinessActivity(ctx context.Context, arg db.CreateBusinessActivityParams) (db.BusinessActivity, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.BusinessActivity), args.Error(1)
}

func (m *MockQuerier) ListBusinessActivitiesByProfile(ctx context.Context, profileID uuid.UUID) ([]db.BusinessActivity, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]db.BusinessActivity), args.Error(1)
}

func (m *MockQuerier) CreateMultistateReturn(ctx context.Context, arg db.CreateMultistateReturnParams) (db.MultistateReturn, error) {
	args := m.Called(ctx, arg)
	return args.Get(0).(db.MultistateReturn), args.Error(1)
}

func (m *MockQuerier) GetMultistateReturn(ctx context.Context, id uuid.UUID) (db.MultistateReturn, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(db.MultistateReturn), args.Error(1)
}

func (m *MockQuerier) ListMultistateReturnsByProfile(ctx context.Context, profileID uuid.UUID) ([]db.MultistateReturn, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).([]db.MultistateReturn), args.Error(1)
}

// TestContext creates a test Gin context
func TestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	return c, recorder
}
