package syncer

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/outreach-sync/internal/crm"
	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/internal/state"
)

// --- Source mock ---

type mockSource struct {
	mock.Mock
	platform string
}

func (m *mockSource) Platform() string {
	if m.platform == "" {
		return "heyreach"
	}
	return m.platform
}

func (m *mockSource) Campaigns(ctx context.Context) ([]model.Campaign, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Campaign), args.Error(1)
}

func (m *mockSource) Conversations(ctx context.Context, campaign model.Campaign) ([]*model.Conversation, error) {
	args := m.Called(ctx, campaign)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Conversation), args.Error(1)
}

// --- CRM mock ---

type mockCRM struct {
	mock.Mock
}

func (m *mockCRM) BatchUpsert(ctx context.Context, items []crm.BatchItem) ([]crm.UpsertResult, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.UpsertResult), args.Error(1)
}

func (m *mockCRM) Create(ctx context.Context, properties map[string]string) error {
	args := m.Called(ctx, properties)
	return args.Error(0)
}

func (m *mockCRM) SearchDueFollowups(ctx context.Context, dueOn time.Time) ([]crm.Contact, error) {
	args := m.Called(ctx, dueOn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crm.Contact), args.Error(1)
}

func (m *mockCRM) ClearPostponed(ctx context.Context, contactID string) error {
	args := m.Called(ctx, contactID)
	return args.Error(0)
}

// --- State store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) LastRun(ctx context.Context, platform string) (*time.Time, error) {
	args := m.Called(ctx, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *mockStore) SetLastRun(ctx context.Context, platform string, t time.Time) error {
	args := m.Called(ctx, platform, t)
	return args.Error(0)
}

func (m *mockStore) StartRun(ctx context.Context, platform string, startedAt time.Time) (string, error) {
	args := m.Called(ctx, platform, startedAt)
	return args.String(0), args.Error(1)
}

func (m *mockStore) CompleteRun(ctx context.Context, runID string, result *state.RunResult) error {
	args := m.Called(ctx, runID, result)
	return args.Error(0)
}

func (m *mockStore) FailRun(ctx context.Context, runID string, errMsg string) error {
	args := m.Called(ctx, runID, errMsg)
	return args.Error(0)
}

func (m *mockStore) ListRuns(ctx context.Context, limit int) ([]state.RunEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]state.RunEntry), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
