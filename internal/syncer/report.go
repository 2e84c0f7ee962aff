package syncer

import (
	"time"

	"github.com/sells-group/outreach-sync/internal/state"
)

// Report summarizes one sync pass.
type Report struct {
	Platform      string    `json:"platform"`
	StartedAt     time.Time `json:"started_at"`
	Campaigns     int       `json:"campaigns"`
	Conversations int       `json:"conversations"`
	Skipped       int       `json:"skipped"`
	Leads         int       `json:"leads"`
	Created       int       `json:"created"`
	Updated       int       `json:"updated"`
	Errored       int       `json:"errored"`
	Postponed     int       `json:"postponed"`
	Errors        []string  `json:"errors,omitempty"`
}

func (r *Report) addError(msg string) {
	r.Errored++
	r.Errors = append(r.Errors, msg)
}

func (r *Report) runResult() *state.RunResult {
	return &state.RunResult{
		Campaigns:     r.Campaigns,
		Conversations: r.Conversations,
		LeadsUpserted: r.Created + r.Updated,
		LeadsCreated:  r.Created,
		Errors:        r.Errored,
	}
}
