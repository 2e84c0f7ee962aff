package classify

import (
	"context"
	"strings"

	"github.com/sells-group/outreach-sync/internal/model"
)

// Fixed explanatory notes attached by the keyword classifier.
const (
	noteNoInbound    = "No inbound messages found"
	noteOptOut       = "Lead appears to be opting out or not interested."
	notePostponed    = "Lead is interested but wants to revisit later."
	noteEnthusiastic = "Lead shows strong positive interest."
	notePositive     = "Lead shows interest in continuing the conversation."
	noteNegative     = "Lead indicates this is not relevant to them."
	noteUnclear      = "Reply received but could not determine clear sentiment from keywords."
)

// Keyword is the deterministic phrase-matching classifier. It is a total
// function: every conversation gets a verdict and every campaign name gets
// a sector.
type Keyword struct {
	vocab *Vocabulary
}

// NewKeyword creates a keyword classifier. A nil vocabulary uses the defaults.
func NewKeyword(vocab *Vocabulary) *Keyword {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Keyword{vocab: vocab}
}

// Intent labels the reply intent of a conversation from its inbound message
// bodies. The ctx parameter satisfies IntentStrategy; no I/O happens here.
func (k *Keyword) Intent(_ context.Context, conv *model.Conversation) (Intent, bool) {
	var sb strings.Builder
	for _, msg := range conv.Messages {
		if msg.Direction == model.DirectionInbound {
			sb.WriteString(" ")
			sb.WriteString(msg.Body)
		}
	}
	inbound := strings.TrimSpace(strings.ToLower(sb.String()))

	if inbound == "" {
		return Intent{
			Sentiment:    model.SentimentNotYetResponded,
			TakenOffList: "no",
			IsPostponed:  "false",
			Notes:        noteNoInbound,
		}, true
	}

	verdict := Intent{
		Sentiment:    model.SentimentNeutral,
		TakenOffList: "no",
		IsPostponed:  "false",
		Notes:        noteUnclear,
	}

	// Opt-out and postponement are checked before tone and are mutually
	// exclusive; opt-out wins when both phrase sets match.
	switch {
	case containsAny(inbound, k.vocab.OptOut):
		verdict.TakenOffList = "yes"
		verdict.Sentiment = model.SentimentNegative
		verdict.Notes = noteOptOut
	case containsAny(inbound, k.vocab.Postpone):
		verdict.IsPostponed = "true"
		verdict.Sentiment = model.SentimentPostponed
		verdict.Notes = notePostponed
	case containsAny(inbound, k.vocab.Enthusiastic):
		verdict.Sentiment = model.SentimentEnthusiastic
		verdict.Notes = noteEnthusiastic
	case containsAny(inbound, k.vocab.Positive):
		verdict.Sentiment = model.SentimentPositive
		verdict.Notes = notePositive
	case containsAny(inbound, k.vocab.Negative):
		verdict.Sentiment = model.SentimentNegative
		verdict.Notes = noteNegative
	}

	return verdict, true
}

// Sector labels a campaign's topical sector by substring match against the
// ordered sector table. Falls back to the vocabulary's default label; never
// returns the literal "Other".
func (k *Keyword) Sector(_ context.Context, campaignName string) (string, bool) {
	lower := strings.ToLower(campaignName)
	for _, p := range k.vocab.Sectors {
		if strings.Contains(lower, p.Keyword) {
			return p.Sector, true
		}
	}
	return k.vocab.DefaultSector, true
}

func containsAny(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}
