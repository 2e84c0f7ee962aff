package syncer

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/internal/resilience"
	"github.com/sells-group/outreach-sync/pkg/instantly"
)

// platformInstantly is the display name written to outbound_platform.
const platformInstantly = "Instantly"

// emailFetchConcurrency caps parallel per-lead thread fetches.
const emailFetchConcurrency = 4

// InstantlySource adapts the Instantly campaigns/leads/emails API to the
// sync pass. Leads without replies are skipped before their threads are
// fetched: they carry no new outreach state, and skipping them saves one
// API call per lead.
type InstantlySource struct {
	client   instantly.Client
	maxLeads int
	retry    resilience.RetryConfig
}

// InstantlyOption configures the source.
type InstantlyOption func(*InstantlySource)

// WithMaxLeads caps the number of leads fetched per campaign. Zero means
// no cap.
func WithMaxLeads(n int) InstantlyOption {
	return func(s *InstantlySource) {
		s.maxLeads = n
	}
}

// NewInstantlySource wraps an Instantly client as a conversation source.
func NewInstantlySource(client instantly.Client, opts ...InstantlyOption) *InstantlySource {
	s := &InstantlySource{client: client, retry: resilience.DefaultRetryConfig()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InstantlySource) Platform() string { return "instantly" }

func (s *InstantlySource) Campaigns(ctx context.Context) ([]model.Campaign, error) {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("instantly", "list_campaigns")
	campaigns, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]instantly.Campaign, error) {
		return s.client.ListCampaigns(ctx)
	})
	if err != nil {
		return nil, eris.Wrap(err, "syncer: list instantly campaigns")
	}
	out := make([]model.Campaign, len(campaigns))
	for i, c := range campaigns {
		out[i] = model.Campaign{ID: c.ID, Name: c.Name}
	}
	return out, nil
}

func (s *InstantlySource) Conversations(ctx context.Context, campaign model.Campaign) ([]*model.Conversation, error) {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("instantly", "list_leads")
	leads, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]instantly.Lead, error) {
		return s.client.ListLeads(ctx, campaign.ID, s.maxLeads)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "syncer: list leads for %q", campaign.Name)
	}

	// Thread fetches are independent, so run a few in parallel. A failed
	// fetch skips that lead; it'll be picked up on the next pass.
	results := make([]*model.Conversation, len(leads))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(emailFetchConcurrency)
	for i, lead := range leads {
		if lead.Email == "" || lead.EmailReplyCount == 0 {
			continue
		}
		g.Go(func() error {
			emails, err := s.client.ListEmails(gctx, campaign.ID, lead.Email)
			if err != nil {
				zap.L().Warn("syncer: instantly email fetch failed",
					zap.String("campaign", campaign.Name),
					zap.String("lead", lead.Email),
					zap.Error(err),
				)
				return nil
			}
			results[i] = convertInstantly(lead, emails, campaign.Name)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*model.Conversation, 0, len(leads))
	for _, conv := range results {
		if conv != nil {
			out = append(out, conv)
		}
	}
	return out, nil
}

func convertInstantly(lead instantly.Lead, emails []instantly.Email, campaignName string) *model.Conversation {
	messages := make([]model.Message, 0, len(emails))
	for _, email := range emails {
		direction := model.DirectionOutbound
		if email.Type == instantly.EmailTypeReceived {
			direction = model.DirectionInbound
		}
		messages = append(messages, model.Message{
			Direction: direction,
			Body:      email.Body.Text,
			SentAt:    email.SentAt(),
		})
	}
	return &model.Conversation{
		Platform:     platformInstantly,
		CampaignName: campaignName,
		Contact: model.Contact{
			FirstName: lead.FirstName,
			LastName:  lead.LastName,
			Email:     lead.Email,
			Company:   lead.CompanyName,
			JobTitle:  lead.JobTitle(),
		},
		Messages: messages,
	}
}
