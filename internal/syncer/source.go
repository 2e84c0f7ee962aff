package syncer

import (
	"context"

	"github.com/sells-group/outreach-sync/internal/model"
)

// Source is one conversation provider feeding the sync pass.
type Source interface {
	// Platform returns the checkpoint key for this provider.
	Platform() string

	// Campaigns lists the provider's outreach campaigns.
	Campaigns(ctx context.Context) ([]model.Campaign, error)

	// Conversations fetches every conversation thread for one campaign.
	Conversations(ctx context.Context, campaign model.Campaign) ([]*model.Conversation, error)
}
