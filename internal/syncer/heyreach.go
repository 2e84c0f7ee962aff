package syncer

import (
	"context"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/internal/resilience"
	"github.com/sells-group/outreach-sync/pkg/heyreach"
)

// platformHeyReach is the display name written to outbound_platform.
const platformHeyReach = "HeyReach"

// HeyReachSource adapts the HeyReach inbox API to the sync pass.
type HeyReachSource struct {
	client heyreach.Client
	retry  resilience.RetryConfig
}

// NewHeyReachSource wraps a HeyReach client as a conversation source.
// Transient API failures are retried with backoff.
func NewHeyReachSource(client heyreach.Client) *HeyReachSource {
	return &HeyReachSource{client: client, retry: resilience.DefaultRetryConfig()}
}

func (s *HeyReachSource) Platform() string { return "heyreach" }

func (s *HeyReachSource) Campaigns(ctx context.Context) ([]model.Campaign, error) {
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("heyreach", "list_campaigns")
	campaigns, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]heyreach.Campaign, error) {
		return s.client.ListCampaigns(ctx)
	})
	if err != nil {
		return nil, eris.Wrap(err, "syncer: list heyreach campaigns")
	}
	out := make([]model.Campaign, len(campaigns))
	for i, c := range campaigns {
		out[i] = model.Campaign{
			ID:   strconv.FormatInt(c.ID, 10),
			Name: c.Name,
		}
	}
	return out, nil
}

func (s *HeyReachSource) Conversations(ctx context.Context, campaign model.Campaign) ([]*model.Conversation, error) {
	id, err := strconv.ParseInt(campaign.ID, 10, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "syncer: bad heyreach campaign id %q", campaign.ID)
	}
	cfg := s.retry
	cfg.OnRetry = resilience.RetryLogger("heyreach", "list_conversations")
	convs, err := resilience.DoVal(ctx, cfg, func(ctx context.Context) ([]heyreach.Conversation, error) {
		return s.client.ListConversations(ctx, id)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "syncer: list conversations for %q", campaign.Name)
	}
	out := make([]*model.Conversation, 0, len(convs))
	for _, conv := range convs {
		out = append(out, convertHeyReach(conv, campaign.Name))
	}
	return out, nil
}

func convertHeyReach(conv heyreach.Conversation, campaignName string) *model.Conversation {
	profile := conv.CorrespondentProfile
	messages := make([]model.Message, 0, len(conv.Messages))
	for _, msg := range conv.Messages {
		direction := model.DirectionInbound
		if msg.Sender == heyreach.SenderMe {
			direction = model.DirectionOutbound
		}
		messages = append(messages, model.Message{
			Direction: direction,
			Body:      msg.Body,
			SentAt:    msg.CreatedAt,
		})
	}
	return &model.Conversation{
		Platform:     platformHeyReach,
		CampaignName: campaignName,
		Contact: model.Contact{
			FirstName:  profile.FirstName,
			LastName:   profile.LastName,
			Email:      profile.Email(),
			Company:    profile.CompanyName,
			JobTitle:   profile.JobTitle(),
			ProfileURL: profile.ProfileURL,
		},
		Messages: messages,
	}
}
