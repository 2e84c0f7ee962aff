package salesforce

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
)

// UpsertContactsByEmail upserts contact records keyed on the Email field.
// The go-salesforce layer splits the collection into API-sized batches.
func UpsertContactsByEmail(ctx context.Context, c Client, records []map[string]any) ([]CollectionResult, error) {
	if len(records) == 0 {
		return nil, nil
	}
	for _, r := range records {
		if r["Email"] == nil || r["Email"] == "" {
			return nil, eris.New("sf: every upsert record needs an Email")
		}
	}
	results, err := c.UpsertCollection(ctx, "Contact", "Email", records)
	if err != nil {
		return nil, eris.Wrap(err, "sf: upsert contacts")
	}
	return results, nil
}

// CreateContact inserts a single Contact record and returns its Salesforce ID.
func CreateContact(ctx context.Context, c Client, fields map[string]any) (string, error) {
	if fields["LastName"] == nil || fields["LastName"] == "" {
		return "", eris.New("sf: contact LastName is required")
	}
	id, err := c.InsertOne(ctx, "Contact", fields)
	if err != nil {
		return "", eris.Wrap(err, "sf: create contact")
	}
	return id, nil
}

// ClearContactPostponed resets the postponed flag on a contact after its
// follow-up reminder has been sent.
func ClearContactPostponed(ctx context.Context, c Client, contactID string) error {
	if contactID == "" {
		return eris.New("sf: contact id is required")
	}
	fields := map[string]any{"Is_Postponed__c": "false"}
	if err := c.UpdateOne(ctx, "Contact", contactID, fields); err != nil {
		return eris.Wrap(err, fmt.Sprintf("sf: clear postponed %s", contactID))
	}
	return nil
}
