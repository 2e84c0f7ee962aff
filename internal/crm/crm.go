// Package crm abstracts the external record store the pipeline syncs leads
// into. HubSpot is the store of record; a Salesforce backend is available
// behind the same contract.
package crm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// ErrConflict reports that a single-record create hit an identity that
// already exists in the store. Callers treat it as an update, not an error.
var ErrConflict = eris.New("crm: identity already exists")

// BatchItem is one record in a keyed batch upsert. Key is the store's upsert
// identity (the lead's email).
type BatchItem struct {
	Key        string
	Properties map[string]string
}

// UpsertResult is the per-item outcome of a batch upsert.
type UpsertResult struct {
	Key string
	New bool
}

// Contact is a store record returned by followup queries.
type Contact struct {
	ID         string
	Properties map[string]string
}

// Client is the record-store contract consumed by the sync pipeline and the
// follow-up checker.
type Client interface {
	// BatchUpsert performs one keyed create-or-update request for up to a
	// store-defined number of items. A returned error means the whole batch
	// failed; per-item outcomes are only meaningful on success.
	BatchUpsert(ctx context.Context, items []BatchItem) ([]UpsertResult, error)

	// Create inserts a single record without an email identity. Returns
	// ErrConflict when the store reports the identity already exists.
	Create(ctx context.Context, properties map[string]string) error

	// SearchDueFollowups returns contacts with is_postponed=true and a
	// followup date at or before dueOn.
	SearchDueFollowups(ctx context.Context, dueOn time.Time) ([]Contact, error)

	// ClearPostponed resets the is_postponed flag on a contact so it is not
	// re-notified.
	ClearPostponed(ctx context.Context, contactID string) error
}
