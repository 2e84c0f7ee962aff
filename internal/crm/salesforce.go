package crm

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/pkg/salesforce"
)

// sfFieldMap translates the pipeline's contact property names into the
// Salesforce Contact schema. Properties without a mapping are dropped;
// hs_linkedin_url is a HubSpot-only mirror of linkedin.
var sfFieldMap = map[string]string{
	"firstname":                "FirstName",
	"lastname":                 "LastName",
	"email":                    "Email",
	"company":                  "Company_Name__c",
	"jobtitle":                 "Title",
	"linkedin":                 "LinkedIn_URL__c",
	"outbound_platform":        "Outbound_Platform__c",
	"latest_outbound_campaign": "Latest_Outbound_Campaign__c",
	"latest_outbound_date":     "Latest_Outbound_Date__c",
	"has_responded":            "Has_Responded__c",
	"reply_sentiment":          "Reply_Sentiment__c",
	"latest_response_text":     "Latest_Response_Text__c",
	"latest_response_date":     "Latest_Response_Date__c",
	"latest_response_platform": "Latest_Response_Platform__c",
	"taken_off_list":           "Taken_Off_List__c",
	"is_postponed":             "Is_Postponed__c",
	"followup_date":            "Followup_Date__c",
	"sector":                   "Sector__c",
	"sentiment_notes":          "Sentiment_Notes__c",
	"response_count":           "Response_Count__c",
}

// Salesforce adapts the Salesforce Contact API to the Client contract.
type Salesforce struct {
	api salesforce.Client
}

// NewSalesforce wraps a Salesforce API client.
func NewSalesforce(api salesforce.Client) *Salesforce {
	return &Salesforce{api: api}
}

func sfRecord(properties map[string]string) map[string]any {
	record := make(map[string]any, len(properties))
	for k, v := range properties {
		if field, ok := sfFieldMap[k]; ok {
			record[field] = v
		}
	}
	return record
}

// BatchUpsert upserts contacts keyed on the Email external ID. Salesforce
// does not report created-vs-updated per record, so every success comes
// back with New unset.
func (s *Salesforce) BatchUpsert(ctx context.Context, items []BatchItem) ([]UpsertResult, error) {
	records := make([]map[string]any, len(items))
	for i, item := range items {
		record := sfRecord(item.Properties)
		record["Email"] = item.Key
		records[i] = record
	}

	collResults, err := salesforce.UpsertContactsByEmail(ctx, s.api, records)
	if err != nil {
		return nil, eris.Wrap(err, "crm: salesforce batch upsert")
	}

	results := make([]UpsertResult, 0, len(collResults))
	for i, r := range collResults {
		if !r.Success {
			zap.L().Warn("salesforce upsert record failed",
				zap.String("email", items[i].Key),
				zap.Strings("errors", r.Errors))
			continue
		}
		results = append(results, UpsertResult{Key: items[i].Key})
	}
	return results, nil
}

func (s *Salesforce) Create(ctx context.Context, properties map[string]string) error {
	record := sfRecord(properties)
	if record["LastName"] == nil || record["LastName"] == "" {
		// SF requires LastName on Contact; fall back to the profile handle.
		record["LastName"] = "Unknown"
	}
	_, err := salesforce.CreateContact(ctx, s.api, record)
	if err != nil {
		if strings.Contains(err.Error(), "DUPLICATES_DETECTED") {
			return ErrConflict
		}
		return eris.Wrap(err, "crm: salesforce create")
	}
	return nil
}

func (s *Salesforce) SearchDueFollowups(ctx context.Context, dueOn time.Time) ([]Contact, error) {
	found, err := salesforce.FindPostponedContactsDue(ctx, s.api, dueOn)
	if err != nil {
		return nil, eris.Wrap(err, "crm: salesforce search followups")
	}

	contacts := make([]Contact, len(found))
	for i, f := range found {
		contacts[i] = Contact{
			ID: f.ID,
			Properties: map[string]string{
				"email":                    f.Email,
				"firstname":                f.FirstName,
				"lastname":                 f.LastName,
				"company":                  f.CompanyName,
				"latest_outbound_campaign": f.OutboundCampaign,
				"latest_response_text":     f.LatestResponseText,
				"followup_date":            f.FollowupDate,
			},
		}
	}
	return contacts, nil
}

func (s *Salesforce) ClearPostponed(ctx context.Context, contactID string) error {
	if err := salesforce.ClearContactPostponed(ctx, s.api, contactID); err != nil {
		return eris.Wrap(err, "crm: salesforce clear postponed")
	}
	return nil
}
