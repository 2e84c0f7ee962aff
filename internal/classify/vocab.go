package classify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// SectorPattern maps a campaign-name keyword to a sector label. Patterns are
// matched in table order; the first substring hit wins.
type SectorPattern struct {
	Keyword string `yaml:"keyword"`
	Sector  string `yaml:"sector"`
}

// Vocabulary holds the phrase sets and sector table used by the keyword
// classifiers. Ops can override it from a YAML file without a rebuild.
type Vocabulary struct {
	OptOut        []string        `yaml:"opt_out"`
	Postpone      []string        `yaml:"postpone"`
	Positive      []string        `yaml:"positive"`
	Enthusiastic  []string        `yaml:"enthusiastic"`
	Negative      []string        `yaml:"negative"`
	Sectors       []SectorPattern `yaml:"sectors"`
	DefaultSector string          `yaml:"default_sector"`
}

// DefaultVocabulary returns the built-in phrase sets.
func DefaultVocabulary() *Vocabulary {
	return &Vocabulary{
		OptOut: []string{
			"not interested", "remove me", "unsubscribe", "stop contacting",
			"take me off", "opt out", "don't contact", "do not contact",
			"leave me alone", "no thanks", "no thank you", "please stop",
			"not for me", "pass on this", "remove my name", "don't message",
			"do not message", "stop messaging", "never contact",
		},
		Postpone: []string{
			"not right now", "reach out later", "maybe later", "not a good time",
			"busy right now", "next quarter", "next month", "next year",
			"circle back", "check back", "get back to me", "follow up later",
			"touch base later", "not the right time", "revisit", "down the road",
			"in a few months", "in a few weeks", "after the holidays", "end of year",
			"beginning of next", "try again", "reconnect later",
		},
		Positive: []string{
			"sounds great", "love to", "would love", "interested", "let's chat",
			"let's connect", "happy to", "sure", "yes", "absolutely",
			"sounds good", "let's do it", "looking forward", "book a time",
			"schedule a call", "set up a meeting", "tell me more", "send me info",
			"i'd like to learn", "sign me up", "count me in",
		},
		Enthusiastic: []string{
			"amazing", "fantastic", "perfect timing", "exactly what",
			"been looking for", "love this", "this is great", "awesome",
			"wonderful", "excellent", "thrilled",
		},
		Negative: []string{
			"not relevant", "wrong person", "don't need", "do not need",
			"already have", "not a fit", "no need", "we're good",
			"we already use", "not looking", "doesn't apply", "spam",
		},
		Sectors: []SectorPattern{
			{"webinar outreach", "Webinar Outreach"},
			{"webinar", "Webinar"},
			{"conference", "Conference Outreach"},
			{"summit", "Conference Outreach"},
			{"event", "Conference Outreach"},
			{"pr firm", "PR/Comms"},
			{"pr ", "PR/Comms"},
			{"comms", "PR/Comms"},
			{"communications", "PR/Comms"},
			{"public relations", "PR/Comms"},
			{"political", "Political"},
			{"govt", "Political"},
			{"government", "Political"},
			{"public sector", "Political"},
			{"healthcare", "Healthcare"},
			{"health", "Healthcare"},
			{"hospital", "Healthcare"},
			{"medical", "Healthcare"},
			{"pharma", "Healthcare"},
			{"biotech", "Healthcare"},
			{"finance", "Finance"},
			{"financial", "Finance"},
			{"banking", "Finance"},
			{"insurance", "Finance"},
			{"fintech", "Finance"},
			{"accounting", "Finance"},
			{"cpa", "Finance"},
			{"saas", "Tech"},
			{"software", "Tech"},
			{"tech", "Tech"},
			{"eng ", "Tech"},
			{"engineering", "Tech"},
			{"ai ", "Tech"},
			{"cyber", "Tech"},
			{"startup", "Tech"},
		},
		DefaultSector: "Outreach",
	}
}

// LoadVocabulary reads a YAML vocabulary file and merges it onto the
// defaults: non-empty sections replace the built-in ones, everything else
// keeps the default. An empty path returns the defaults unchanged.
func LoadVocabulary(path string) (*Vocabulary, error) {
	vocab := DefaultVocabulary()
	if path == "" {
		return vocab, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read vocabulary %s", path)
	}

	var override Vocabulary
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, eris.Wrapf(err, "classify: parse vocabulary %s", path)
	}

	if len(override.OptOut) > 0 {
		vocab.OptOut = override.OptOut
	}
	if len(override.Postpone) > 0 {
		vocab.Postpone = override.Postpone
	}
	if len(override.Positive) > 0 {
		vocab.Positive = override.Positive
	}
	if len(override.Enthusiastic) > 0 {
		vocab.Enthusiastic = override.Enthusiastic
	}
	if len(override.Negative) > 0 {
		vocab.Negative = override.Negative
	}
	if len(override.Sectors) > 0 {
		vocab.Sectors = override.Sectors
	}
	if override.DefaultSector != "" {
		vocab.DefaultSector = override.DefaultSector
	}

	return vocab, nil
}
