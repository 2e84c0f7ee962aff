// Package classify labels conversations with reply intent and campaigns with
// a topical sector. A primary AI-backed strategy is tried first when
// configured; the deterministic keyword strategy is the always-available
// fallback.
package classify

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/model"
)

// Intent is the classification verdict for one conversation. Flag values use
// the CRM's string conventions ("yes"/"no", "true"/"false").
type Intent struct {
	Sentiment    string `json:"reply_sentiment"`
	TakenOffList string `json:"taken_off_list"`
	IsPostponed  string `json:"is_postponed"`
	Notes        string `json:"sentiment_notes"`
}

// IntentStrategy labels a conversation's reply intent. The second return
// value reports whether a verdict was produced; strategies degrade to
// (zero, false) rather than returning errors.
type IntentStrategy interface {
	Intent(ctx context.Context, conv *model.Conversation) (Intent, bool)
}

// SectorStrategy labels a campaign's topical sector.
type SectorStrategy interface {
	Sector(ctx context.Context, campaignName string) (string, bool)
}

// SectorCache memoizes campaign name → sector for the duration of one sync
// pass, so a campaign with thousands of conversations is classified once.
type SectorCache map[string]string

// Classifier chains a primary strategy with the keyword fallback. The
// primary is optional; when unset or unavailable the keyword verdict is
// used directly.
type Classifier struct {
	primaryIntent IntentStrategy
	primarySector SectorStrategy
	keyword       *Keyword
}

// Option configures the Classifier.
type Option func(*Classifier)

// WithPrimary installs an AI-backed primary strategy for both intent and
// sector classification.
func WithPrimary(ai *AI) Option {
	return func(c *Classifier) {
		if ai != nil {
			c.primaryIntent = ai
			c.primarySector = ai
		}
	}
}

// NewClassifier builds a classifier around the keyword fallback.
func NewClassifier(keyword *Keyword, opts ...Option) *Classifier {
	c := &Classifier{keyword: keyword}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Intent classifies a conversation's reply, preferring the primary strategy
// when it yields a verdict.
func (c *Classifier) Intent(ctx context.Context, conv *model.Conversation) Intent {
	if c.primaryIntent != nil {
		if verdict, ok := c.primaryIntent.Intent(ctx, conv); ok {
			return verdict
		}
		zap.L().Debug("classify: primary intent unavailable, using keywords",
			zap.String("campaign", conv.CampaignName),
		)
	}
	verdict, _ := c.keyword.Intent(ctx, conv)
	return verdict
}

// Sector classifies a campaign name, memoized in cache. A primary verdict of
// "Other" is rejected in favor of the keyword table, and the final label is
// guaranteed to never be the literal "Other".
func (c *Classifier) Sector(ctx context.Context, campaignName string, cache SectorCache) string {
	if sector, ok := cache[campaignName]; ok {
		return sector
	}

	var sector string
	ok := false
	if c.primarySector != nil {
		sector, ok = c.primarySector.Sector(ctx, campaignName)
	}
	if !ok || strings.EqualFold(sector, "other") {
		sector, _ = c.keyword.Sector(ctx, campaignName)
	}
	if strings.EqualFold(sector, "other") {
		sector = "Outreach"
	}

	if cache != nil {
		cache[campaignName] = sector
	}
	return sector
}
