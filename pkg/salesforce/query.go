package salesforce

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Contact represents the slice of a Salesforce Contact the sync pipeline
// reads back. Outreach fields live on custom fields suffixed __c.
type Contact struct {
	ID                 string `json:"Id" salesforce:"Id"`
	Email              string `json:"Email" salesforce:"Email"`
	FirstName          string `json:"FirstName" salesforce:"FirstName"`
	LastName           string `json:"LastName" salesforce:"LastName"`
	CompanyName        string `json:"Company_Name__c" salesforce:"Company_Name__c"`
	ReplySentiment     string `json:"Reply_Sentiment__c" salesforce:"Reply_Sentiment__c"`
	IsPostponed        string `json:"Is_Postponed__c" salesforce:"Is_Postponed__c"`
	FollowupDate       string `json:"Followup_Date__c" salesforce:"Followup_Date__c"`
	LatestResponseText string `json:"Latest_Response_Text__c" salesforce:"Latest_Response_Text__c"`
	OutboundCampaign   string `json:"Latest_Outbound_Campaign__c" salesforce:"Latest_Outbound_Campaign__c"`
}

// contactFields are the SOQL fields selected for Contact queries.
var contactFields = []string{
	"Id", "Email", "FirstName", "LastName", "Company_Name__c",
	"Reply_Sentiment__c", "Is_Postponed__c", "Followup_Date__c",
	"Latest_Response_Text__c", "Latest_Outbound_Campaign__c",
}

// FindContactByEmail queries Salesforce for a Contact matching the given
// email. Returns nil if no contact is found.
func FindContactByEmail(ctx context.Context, c Client, email string) (*Contact, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact WHERE Email = '%s' LIMIT 1",
		strings.Join(contactFields, ", "),
		escapeSoql(email),
	)

	var contacts []Contact
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("sf: find contact by email %s", email))
	}
	if len(contacts) == 0 {
		return nil, nil
	}
	return &contacts[0], nil
}

// FindPostponedContactsDue queries for contacts flagged postponed whose
// follow-up date is on or before dueOn. SOQL date literals are unquoted.
func FindPostponedContactsDue(ctx context.Context, c Client, dueOn time.Time) ([]Contact, error) {
	soql := fmt.Sprintf(
		"SELECT %s FROM Contact WHERE Is_Postponed__c = 'true' AND Followup_Date__c <= %s",
		strings.Join(contactFields, ", "),
		dueOn.UTC().Format("2006-01-02"),
	)

	var contacts []Contact
	if err := c.Query(ctx, soql, &contacts); err != nil {
		return nil, eris.Wrap(err, "sf: find postponed contacts due")
	}
	return contacts, nil
}

// escapeSoql escapes single quotes in SOQL string literals to prevent injection.
func escapeSoql(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}
