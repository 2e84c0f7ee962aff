// Package normalize converts provider conversations into Lead Records by
// invoking the classifiers and the follow-up resolver.
package normalize

import (
	"context"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/outreach-sync/internal/classify"
	"github.com/sells-group/outreach-sync/internal/followup"
	"github.com/sells-group/outreach-sync/internal/model"
)

// Normalizer turns one conversation snapshot into one Lead Record.
type Normalizer struct {
	classifier *classify.Classifier
	now        func() time.Time
}

// Option configures the Normalizer.
type Option func(*Normalizer)

// WithClock overrides the wall clock, for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// New creates a Normalizer around the given classifier chain.
func New(classifier *classify.Classifier, opts ...Option) *Normalizer {
	n := &Normalizer{
		classifier: classifier,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize produces a Lead Record for a conversation, or nil when there is
// nothing to report: a lead with no stable contact identity cannot be synced,
// and a thread with no messages carries no outreach state.
func (n *Normalizer) Normalize(ctx context.Context, conv *model.Conversation, cache classify.SectorCache) *model.LeadRecord {
	if conv.Contact.Email == "" && conv.Contact.ProfileURL == "" {
		return nil
	}
	if len(conv.Messages) == 0 {
		return nil
	}

	var (
		inboundCount       int
		latestOutbound     time.Time
		latestResponse     time.Time
		latestResponseText string
	)
	for _, msg := range conv.Messages {
		switch msg.Direction {
		case model.DirectionInbound:
			inboundCount++
			if msg.SentAt.After(latestResponse) {
				latestResponse = msg.SentAt
				latestResponseText = msg.Body
			}
		default:
			if msg.SentAt.After(latestOutbound) {
				latestOutbound = msg.SentAt
			}
		}
	}
	hasResponded := inboundCount > 0

	verdict := classify.Intent{
		Sentiment:    model.SentimentNotYetResponded,
		TakenOffList: "no",
		IsPostponed:  "false",
	}
	if hasResponded {
		verdict = n.classifier.Intent(ctx, conv)
	}

	sector := n.classifier.Sector(ctx, conv.CampaignName, cache)

	followupDate := ""
	if verdict.IsPostponed == "true" {
		followupDate = followup.ResolveDate(latestResponseText, n.now())
	}

	record := &model.LeadRecord{
		FirstName:          properName(conv.Contact.FirstName),
		LastName:           properName(conv.Contact.LastName),
		Email:              strings.TrimSpace(conv.Contact.Email),
		Company:            conv.Contact.Company,
		JobTitle:           conv.Contact.JobTitle,
		ProfileURL:         conv.Contact.ProfileURL,
		Platform:           conv.Platform,
		CampaignName:       conv.CampaignName,
		LatestOutboundDate: model.MidnightMillis(latestOutbound),
		HasResponded:       strconv.FormatBool(hasResponded),
		ReplySentiment:     verdict.Sentiment,
		LatestResponseText: latestResponseText,
		LatestResponseDate: model.MidnightMillis(latestResponse),
		TakenOffList:       verdict.TakenOffList,
		IsPostponed:        verdict.IsPostponed,
		FollowupDate:       followupDate,
		Sector:             sector,
		SentimentNotes:     verdict.Notes,
		ResponseCount:      strconv.Itoa(inboundCount),
	}
	if hasResponded {
		record.ResponsePlatform = conv.Platform
	}
	return record
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// properName title-cases names that providers deliver all-lowercase.
// Mixed-case names ("McDonald", "van der Berg") are left alone.
func properName(name string) string {
	name = strings.TrimSpace(name)
	if name != "" && name == strings.ToLower(name) {
		return titleCaser.String(name)
	}
	return name
}
