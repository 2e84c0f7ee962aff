package hubspot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchUpsertContacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/batch/upsert", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req batchUpsertRequest
		require.NoError(t, json.Unmarshal(body, &req))
		require.Len(t, req.Inputs, 2)
		assert.Equal(t, "email", req.Inputs[0].IDProperty)
		assert.Equal(t, "jane@acme.com", req.Inputs[0].ID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "COMPLETE",
			"results": [
				{"id": "101", "new": true, "properties": {"email": "jane@acme.com"}},
				{"id": "102", "new": false, "properties": {"email": "bob@acme.com"}}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	results, err := c.BatchUpsertContacts(context.Background(), []UpsertInput{
		{ID: "jane@acme.com", IDProperty: "email", Properties: map[string]string{"email": "jane@acme.com"}},
		{ID: "bob@acme.com", IDProperty: "email", Properties: map[string]string{"email": "bob@acme.com"}},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.True(t, results[0].New)
	assert.False(t, results[1].New)
}

func TestBatchUpsertContactsEmpty(t *testing.T) {
	c := NewClient("test-token", WithBaseURL("http://unused.invalid"))
	results, err := c.BatchUpsertContacts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBatchUpsertContactsOverLimit(t *testing.T) {
	inputs := make([]UpsertInput, MaxBatchSize+1)
	c := NewClient("test-token", WithBaseURL("http://unused.invalid"))
	_, err := c.BatchUpsertContacts(context.Background(), inputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds limit")
}

func TestBatchUpsertContactsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message": "boom"}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.BatchUpsertContacts(context.Background(), []UpsertInput{{ID: "a@b.com", IDProperty: "email"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestCreateContactConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message": "Contact already exists"}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	_, err := c.CreateContact(context.Background(), map[string]string{"firstname": "Jane"})
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrConflict))
}

func TestCreateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/contacts", r.URL.Path)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": "201", "properties": {"firstname": "Jane"}}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	contact, err := c.CreateContact(context.Background(), map[string]string{"firstname": "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "201", contact.ID)
}

func TestUpdateContact(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/crm/v3/objects/contacts/301", r.URL.Path)
		_, _ = w.Write([]byte(`{"id": "301"}`))
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	err := c.UpdateContact(context.Background(), "301", map[string]string{"is_postponed": "false"})
	require.NoError(t, err)
}

func TestSearchContactsPaging(t *testing.T) {
	call := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/crm/v3/objects/contacts/search", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req SearchRequest
		require.NoError(t, json.Unmarshal(body, &req))

		call++
		switch call {
		case 1:
			assert.Empty(t, req.After)
			_, _ = w.Write([]byte(`{
				"total": 3,
				"results": [{"id": "1"}, {"id": "2"}],
				"paging": {"next": {"after": "2"}}
			}`))
		default:
			assert.Equal(t, "2", req.After)
			_, _ = w.Write([]byte(`{"total": 3, "results": [{"id": "3"}]}`))
		}
	}))
	defer srv.Close()

	c := NewClient("test-token", WithBaseURL(srv.URL))
	contacts, err := c.SearchContacts(context.Background(), SearchRequest{
		FilterGroups: []FilterGroup{{Filters: []Filter{{PropertyName: "is_postponed", Operator: "EQ", Value: "true"}}}},
	})
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, 2, call)
	assert.Equal(t, "3", contacts[2].ID)
}
