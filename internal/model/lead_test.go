package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContactKey_EmailPreferred(t *testing.T) {
	r := LeadRecord{Email: "  Jane.Doe@Example.COM ", ProfileURL: "https://linkedin.com/in/janedoe"}
	assert.Equal(t, "jane.doe@example.com", r.ContactKey())
}

func TestContactKey_ProfileURLFallback(t *testing.T) {
	r := LeadRecord{ProfileURL: "https://linkedin.com/in/janedoe"}
	assert.Equal(t, "https://linkedin.com/in/janedoe", r.ContactKey())
}

func TestAddressable(t *testing.T) {
	assert.False(t, (&LeadRecord{}).Addressable())
	assert.True(t, (&LeadRecord{Email: "a@b.com"}).Addressable())
	assert.True(t, (&LeadRecord{ProfileURL: "https://linkedin.com/in/x"}).Addressable())
}

func TestProperties_OmitsEmpty(t *testing.T) {
	r := LeadRecord{
		FirstName:    "Jane",
		Email:        "jane@example.com",
		HasResponded: "false",
	}
	props := r.Properties()

	assert.Equal(t, "Jane", props["firstname"])
	assert.Equal(t, "jane@example.com", props["email"])
	assert.Equal(t, "false", props["has_responded"])
	_, ok := props["company"]
	assert.False(t, ok)
	_, ok = props["followup_date"]
	assert.False(t, ok)
}

func TestProperties_MirrorsProfileURL(t *testing.T) {
	r := LeadRecord{ProfileURL: "https://linkedin.com/in/janedoe"}
	props := r.Properties()
	assert.Equal(t, props["linkedin"], props["hs_linkedin_url"])
}

func TestMidnightMillis(t *testing.T) {
	ts := time.Date(2024, 3, 15, 17, 42, 9, 0, time.UTC)
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, "1710460800000", MidnightMillis(ts))
	assert.EqualValues(t, 1710460800000, want)
}

func TestMidnightMillis_ZeroTime(t *testing.T) {
	assert.Equal(t, "", MidnightMillis(time.Time{}))
}

func TestMidnightMillis_NonUTCInput(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 02:30 on the 16th in UTC+5 is still the 15th in UTC.
	ts := time.Date(2024, 3, 16, 2, 30, 0, 0, loc)
	assert.Equal(t, "1710460800000", MidnightMillis(ts))
}

func TestLastActivity(t *testing.T) {
	c := Conversation{Messages: []Message{
		{SentAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{SentAt: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)},
		{SentAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
	}}
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), c.LastActivity())
}

func TestLastActivity_NoMessages(t *testing.T) {
	c := Conversation{}
	assert.True(t, c.LastActivity().IsZero())
}
