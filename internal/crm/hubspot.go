package crm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/pkg/hubspot"
)

// followupProperties are the fields the follow-up checker needs back from
// contact searches.
var followupProperties = []string{
	"email", "firstname", "lastname", "company",
	"latest_outbound_campaign", "latest_response_text", "followup_date",
}

// HubSpot adapts the HubSpot contacts API to the Client contract.
type HubSpot struct {
	api hubspot.Client
}

// NewHubSpot wraps a HubSpot API client.
func NewHubSpot(api hubspot.Client) *HubSpot {
	return &HubSpot{api: api}
}

func (h *HubSpot) BatchUpsert(ctx context.Context, items []BatchItem) ([]UpsertResult, error) {
	inputs := make([]hubspot.UpsertInput, len(items))
	for i, item := range items {
		inputs[i] = hubspot.UpsertInput{
			ID:         item.Key,
			IDProperty: "email",
			Properties: item.Properties,
		}
	}

	upserted, err := h.api.BatchUpsertContacts(ctx, inputs)
	if err != nil {
		return nil, eris.Wrap(err, "crm: hubspot batch upsert")
	}

	results := make([]UpsertResult, len(upserted))
	for i, u := range upserted {
		results[i] = UpsertResult{Key: u.Properties["email"], New: u.New}
	}
	return results, nil
}

func (h *HubSpot) Create(ctx context.Context, properties map[string]string) error {
	_, err := h.api.CreateContact(ctx, properties)
	if eris.Is(err, hubspot.ErrConflict) {
		return ErrConflict
	}
	if err != nil {
		return eris.Wrap(err, "crm: hubspot create")
	}
	return nil
}

func (h *HubSpot) SearchDueFollowups(ctx context.Context, dueOn time.Time) ([]Contact, error) {
	req := hubspot.SearchRequest{
		FilterGroups: []hubspot.FilterGroup{{
			Filters: []hubspot.Filter{
				{PropertyName: "is_postponed", Operator: "EQ", Value: "true"},
				{PropertyName: "followup_date", Operator: "LTE", Value: dueOn.UTC().Format("2006-01-02")},
			},
		}},
		Properties: followupProperties,
	}

	found, err := h.api.SearchContacts(ctx, req)
	if err != nil {
		return nil, eris.Wrap(err, "crm: hubspot search followups")
	}

	contacts := make([]Contact, len(found))
	for i, f := range found {
		contacts[i] = Contact{ID: f.ID, Properties: f.Properties}
	}
	zap.L().Debug("hubspot followup search",
		zap.Int("due", len(contacts)),
		zap.String("due_on", dueOn.Format("2006-01-02")))
	return contacts, nil
}

func (h *HubSpot) ClearPostponed(ctx context.Context, contactID string) error {
	err := h.api.UpdateContact(ctx, contactID, map[string]string{"is_postponed": "false"})
	if err != nil {
		return eris.Wrap(err, "crm: hubspot clear postponed")
	}
	return nil
}
