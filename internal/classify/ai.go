package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/pkg/anthropic"
)

const intentSystemPrompt = `You analyze outbound sales conversations and classify the lead's response. Respond with a valid JSON object (no markdown, no code fences) with these fields:
- "reply_sentiment": one of "Enthusiastic", "Positive", "Neutral", "Negative", "Postponed", "Not Yet Responded"
- "taken_off_list": "yes" or "no" — is the lead asking to be removed, opting out, unsubscribing, saying "not interested", "remove me", "stop contacting", etc.?
- "is_postponed": "true" or "false" — is the lead saying "not right now", "reach out later", "busy right now", "maybe next quarter", etc.?
- "sentiment_notes": brief 1-2 sentence explanation of your classification`

const sectorSystemPrompt = `Given a campaign name, classify it into the most specific sector. Pick the single best-fit sector from this list, or identify a more specific sector from the campaign name. NEVER return "Other".

Sectors:
- Webinar — webinar-related campaigns
- Webinar Outreach — LinkedIn connections for webinar outreach
- PR/Comms — PR/comms firms
- Conference Outreach — conference-related
- Political — political campaigns/orgs
- Healthcare — healthcare sector
- Tech — technology sector
- Finance — financial services

Respond with ONLY the sector name, nothing else.`

// AI classifies with Claude via the Anthropic API. Every failure mode —
// missing configuration, transport errors, malformed responses — degrades to
// (zero, false) so a single classification can never block the pass.
type AI struct {
	client anthropic.Client
	model  string
}

// NewAI creates the AI-backed strategy. Returns nil when the client is
// unconfigured, which the caller treats as "no primary strategy".
func NewAI(client anthropic.Client, modelID string) *AI {
	if client == nil || modelID == "" {
		return nil
	}
	return &AI{client: client, model: modelID}
}

// Warm primes the prompt cache with the shared intent system prompt so
// every per-conversation call in the pass hits the warm cache. Priming is
// best-effort; a failure here only forfeits the cache discount.
func (a *AI) Warm(ctx context.Context) {
	resp, err := anthropic.PrimerRequest(ctx, a.client, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 16,
		System:    anthropic.BuildCachedSystemBlocks(intentSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: "Acknowledge."},
		},
	})
	if err != nil {
		zap.L().Debug("classify: cache primer failed", zap.Error(err))
		return
	}
	resp.Usage.LogCost(a.model, "primer")
}

// Intent asks the model for a reply-intent verdict over the full
// conversation transcript.
func (a *AI) Intent(ctx context.Context, conv *model.Conversation) (Intent, bool) {
	var sb strings.Builder
	for _, msg := range conv.Messages {
		fmt.Fprintf(&sb, "[%s]: %s\n", msg.Direction, msg.Body)
	}

	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 512,
		System:    anthropic.BuildCachedSystemBlocks(intentSystemPrompt),
		Messages: []anthropic.Message{
			{Role: "user", Content: "Conversation:\n" + sb.String()},
		},
	})
	if err != nil {
		zap.L().Warn("classify: ai intent failed, using keywords", zap.Error(err))
		return Intent{}, false
	}
	resp.Usage.LogCost(a.model, "intent")

	var verdict Intent
	if err := json.Unmarshal([]byte(stripFences(extractText(resp))), &verdict); err != nil {
		zap.L().Warn("classify: ai intent returned malformed JSON", zap.Error(err))
		return Intent{}, false
	}
	if verdict.Sentiment == "" {
		verdict.Sentiment = model.SentimentNeutral
	}
	if verdict.TakenOffList == "" {
		verdict.TakenOffList = "no"
	}
	if verdict.IsPostponed == "" {
		verdict.IsPostponed = "false"
	}
	return verdict, true
}

// Sector asks the model for a sector label. Empty or "Other" verdicts are
// rejected so the deterministic table takes over.
func (a *AI) Sector(ctx context.Context, campaignName string) (string, bool) {
	resp, err := a.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: 64,
		System:    []anthropic.SystemBlock{{Text: sectorSystemPrompt}},
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Campaign name: %q", campaignName)},
		},
	})
	if err != nil {
		zap.L().Warn("classify: ai sector failed, using keywords",
			zap.String("campaign", campaignName),
			zap.Error(err),
		)
		return "", false
	}
	resp.Usage.LogCost(a.model, "sector")

	sector := strings.TrimSpace(extractText(resp))
	if sector == "" || strings.EqualFold(sector, "other") {
		return "", false
	}
	return sector, true
}

// extractText concatenates the text blocks of a message response.
func extractText(resp *anthropic.MessageResponse) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" || block.Type == "" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String()
}

// stripFences removes a surrounding markdown code fence, which models emit
// despite instructions not to.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
