package crm

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sells-group/outreach-sync/pkg/hubspot"
	"github.com/sells-group/outreach-sync/pkg/salesforce"
)

type mockHubSpot struct {
	mock.Mock
}

func (m *mockHubSpot) BatchUpsertContacts(ctx context.Context, inputs []hubspot.UpsertInput) ([]hubspot.UpsertedContact, error) {
	args := m.Called(ctx, inputs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.UpsertedContact), args.Error(1)
}

func (m *mockHubSpot) CreateContact(ctx context.Context, properties map[string]string) (*hubspot.SimpleContact, error) {
	args := m.Called(ctx, properties)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hubspot.SimpleContact), args.Error(1)
}

func (m *mockHubSpot) UpdateContact(ctx context.Context, contactID string, properties map[string]string) error {
	args := m.Called(ctx, contactID, properties)
	return args.Error(0)
}

func (m *mockHubSpot) SearchContacts(ctx context.Context, req hubspot.SearchRequest) ([]hubspot.SimpleContact, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]hubspot.SimpleContact), args.Error(1)
}

type mockSalesforce struct {
	mock.Mock
}

func (m *mockSalesforce) Query(ctx context.Context, soql string, out any) error {
	args := m.Called(ctx, soql, out)
	return args.Error(0)
}

func (m *mockSalesforce) InsertOne(ctx context.Context, sObjectName string, record map[string]any) (string, error) {
	args := m.Called(ctx, sObjectName, record)
	return args.String(0), args.Error(1)
}

func (m *mockSalesforce) UpdateOne(ctx context.Context, sObjectName string, id string, fields map[string]any) error {
	args := m.Called(ctx, sObjectName, id, fields)
	return args.Error(0)
}

func (m *mockSalesforce) UpsertCollection(ctx context.Context, sObjectName, externalIDField string, records []map[string]any) ([]salesforce.CollectionResult, error) {
	args := m.Called(ctx, sObjectName, externalIDField, records)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]salesforce.CollectionResult), args.Error(1)
}
