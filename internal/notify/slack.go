// Package notify sends operator-facing notifications: Slack messages for
// postponed replies and due follow-ups, and optional logging of follow-ups
// to a Notion database.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/crm"
	"github.com/sells-group/outreach-sync/internal/model"
)

// maxReplyLen caps the quoted reply text in Slack messages.
const maxReplyLen = 300

var webhookClient = &http.Client{Timeout: 10 * time.Second}

// Slack posts messages to an incoming-webhook URL. A Slack with an empty URL
// is valid and drops every message, so callers never need to branch.
type Slack struct {
	webhookURL string
	http       *http.Client
}

// NewSlack creates a Slack notifier. An empty webhookURL disables it.
func NewSlack(webhookURL string) *Slack {
	return &Slack{webhookURL: webhookURL, http: webhookClient}
}

// Enabled reports whether a webhook URL is configured.
func (s *Slack) Enabled() bool {
	return s.webhookURL != ""
}

// PostponedReply notifies the channel that a lead asked to be contacted
// later, including the suggested follow-up date.
func (s *Slack) PostponedReply(ctx context.Context, lead *model.LeadRecord) error {
	if !s.Enabled() {
		zap.L().Warn("slack webhook not configured, skipping postponed notification")
		return nil
	}

	text := fmt.Sprintf("*Postponed Reply — Follow Up on %s*\n*Lead:* %s", lead.FollowupDate, orUnknown(lead.FullName()))
	if lead.Company != "" {
		text += " at " + lead.Company
	}
	text += fmt.Sprintf("\n*Campaign:* %s\n*Email:* %s\n*Reply:* _%s_\n*Suggested follow-up:* %s",
		lead.CampaignName, lead.Email, truncate(lead.LatestResponseText), lead.FollowupDate)

	return s.post(ctx, text)
}

// FollowupReminder notifies the channel that a contact's follow-up date has
// arrived.
func (s *Slack) FollowupReminder(ctx context.Context, contact crm.Contact) error {
	if !s.Enabled() {
		zap.L().Warn("slack webhook not configured, skipping followup reminder")
		return nil
	}

	props := contact.Properties
	name := orUnknown(props["firstname"] + " " + props["lastname"])

	contactLine := "*Email:* " + props["email"]
	if props["email"] == "" {
		contactLine = "*LinkedIn:* " + props["linkedin"]
	}

	text := fmt.Sprintf(":alarm_clock: *Time to Follow Up!*\n*Lead:* %s", name)
	if props["company"] != "" {
		text += " at " + props["company"]
	}
	text += fmt.Sprintf("\n*Platform:* %s\n*Campaign:* %s\n%s\n*Original reply:* _%s_\n*Follow-up date:* %s\n*HubSpot:* https://app.hubspot.com/contacts/%s",
		props["outbound_platform"], props["latest_outbound_campaign"], contactLine,
		truncate(props["latest_response_text"]), props["followup_date"], contact.ID)

	return s.post(ctx, text)
}

func (s *Slack) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return eris.Wrap(err, "notify: marshal slack payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "notify: create slack request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "notify: slack request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("notify: slack returned status %d", resp.StatusCode)
	}
	return nil
}

func truncate(reply string) string {
	if len(reply) > maxReplyLen {
		return reply[:maxReplyLen] + "..."
	}
	return reply
}

func orUnknown(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Unknown"
	}
	return name
}
