// Package model defines the core types shared across the outreach sync pipeline.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Direction indicates whether a message was sent by us or by the lead.
type Direction string

const (
	DirectionOutbound Direction = "OUTBOUND"
	DirectionInbound  Direction = "INBOUND"
)

// Reply sentiment labels written to the CRM. These are fixed picklist values.
const (
	SentimentEnthusiastic    = "Enthusiastic"
	SentimentPositive        = "Positive"
	SentimentNeutral         = "Neutral"
	SentimentNegative        = "Negative"
	SentimentPostponed       = "Postponed"
	SentimentNotYetResponded = "Not Yet Responded"
)

// Campaign identifies a single outbound campaign on a provider.
type Campaign struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Contact holds the identity fields of a lead as supplied by a provider.
type Contact struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Company    string `json:"company"`
	JobTitle   string `json:"job_title"`
	ProfileURL string `json:"profile_url"`
}

// Message is a single message within a conversation.
type Message struct {
	Direction Direction `json:"direction"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sent_at"`
}

// Conversation is an immutable snapshot of one thread with one lead,
// pulled from a provider once per sync pass.
type Conversation struct {
	Platform     string    `json:"platform"`
	CampaignName string    `json:"campaign_name"`
	Contact      Contact   `json:"contact"`
	Messages     []Message `json:"messages"`
}

// LastActivity returns the timestamp of the most recent message in the
// conversation, or the zero time when there are no timestamped messages.
func (c *Conversation) LastActivity() time.Time {
	var latest time.Time
	for _, m := range c.Messages {
		if m.SentAt.After(latest) {
			latest = m.SentAt
		}
	}
	return latest
}

// LeadRecord is the normalized output of the pipeline for one contactable
// person. Field values are strings in the CRM's property conventions:
// flags are "true"/"false" or "yes"/"no", CRM date fields are midnight-UTC
// millisecond timestamps, and FollowupDate is a plain YYYY-MM-DD date.
type LeadRecord struct {
	FirstName          string `json:"firstname"`
	LastName           string `json:"lastname"`
	Email              string `json:"email"`
	Company            string `json:"company"`
	JobTitle           string `json:"jobtitle"`
	ProfileURL         string `json:"linkedin"`
	Platform           string `json:"outbound_platform"`
	CampaignName       string `json:"latest_outbound_campaign"`
	LatestOutboundDate string `json:"latest_outbound_date"`
	HasResponded       string `json:"has_responded"`
	ReplySentiment     string `json:"reply_sentiment"`
	LatestResponseText string `json:"latest_response_text"`
	LatestResponseDate string `json:"latest_response_date"`
	ResponsePlatform   string `json:"latest_response_platform"`
	TakenOffList       string `json:"taken_off_list"`
	IsPostponed        string `json:"is_postponed"`
	FollowupDate       string `json:"followup_date"`
	Sector             string `json:"sector"`
	SentimentNotes     string `json:"sentiment_notes"`
	ResponseCount      string `json:"response_count"`
}

// NormalizedEmail returns the lead's email lower-cased and trimmed, the
// canonical form used for dedup keys and CRM upsert identity.
func (r *LeadRecord) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(r.Email))
}

// ContactKey returns the dedup identity for the lead: normalized email when
// present, else the external profile URL. Empty means unaddressable.
func (r *LeadRecord) ContactKey() string {
	if email := r.NormalizedEmail(); email != "" {
		return email
	}
	return r.ProfileURL
}

// Addressable reports whether the record carries any stable contact identity.
// Unaddressable records are never merged and are passed through dedup as-is.
func (r *LeadRecord) Addressable() bool {
	return r.ContactKey() != ""
}

// Responded reports whether the lead has replied at least once.
func (r *LeadRecord) Responded() bool {
	return r.HasResponded == "true"
}

// Postponed reports whether the reply was classified interested-but-not-now.
func (r *LeadRecord) Postponed() bool {
	return r.IsPostponed == "true"
}

// FullName joins the first and last name for display.
func (r *LeadRecord) FullName() string {
	return strings.TrimSpace(r.FirstName + " " + r.LastName)
}

// Properties returns the CRM property map for the record. Empty values are
// omitted so partial updates never blank out existing CRM fields.
func (r *LeadRecord) Properties() map[string]string {
	props := map[string]string{
		"firstname":                r.FirstName,
		"lastname":                 r.LastName,
		"email":                    r.Email,
		"company":                  r.Company,
		"jobtitle":                 r.JobTitle,
		"linkedin":                 r.ProfileURL,
		"hs_linkedin_url":          r.ProfileURL,
		"outbound_platform":        r.Platform,
		"latest_outbound_campaign": r.CampaignName,
		"latest_outbound_date":     r.LatestOutboundDate,
		"has_responded":            r.HasResponded,
		"reply_sentiment":          r.ReplySentiment,
		"latest_response_text":     r.LatestResponseText,
		"latest_response_date":     r.LatestResponseDate,
		"latest_response_platform": r.ResponsePlatform,
		"taken_off_list":           r.TakenOffList,
		"is_postponed":             r.IsPostponed,
		"followup_date":            r.FollowupDate,
		"sector":                   r.Sector,
		"sentiment_notes":          r.SentimentNotes,
		"response_count":           r.ResponseCount,
	}
	for k, v := range props {
		if v == "" {
			delete(props, k)
		}
	}
	return props
}

// MidnightMillis converts a timestamp to the CRM's date-field convention:
// the millisecond timestamp of midnight UTC on that calendar day, as a
// string. Returns "" for the zero time; malformed inputs upstream default
// to the zero time rather than failing the record.
func MidnightMillis(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	utc := t.UTC()
	midnight := time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
	return strconv.FormatInt(midnight.UnixMilli(), 10)
}
