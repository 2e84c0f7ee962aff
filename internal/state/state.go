// Package state persists sync checkpoints and the per-run audit log.
//
// Each platform keeps one checkpoint: the wall-clock start of its last
// completed sync pass. A pass only advances the checkpoint after it finishes,
// so an interrupted pass is re-covered in full on the next run.
package state

import (
	"context"
	"time"
)

// Run statuses recorded in the run log.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// RunResult holds the counters recorded when a run completes.
type RunResult struct {
	Campaigns     int `json:"campaigns"`
	Conversations int `json:"conversations"`
	LeadsUpserted int `json:"leads_upserted"`
	LeadsCreated  int `json:"leads_created"`
	Errors        int `json:"errors"`
}

// RunEntry is one row of the sync run log.
type RunEntry struct {
	ID          string     `json:"id"`
	Platform    string     `json:"platform"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Result      *RunResult `json:"result,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// Store is the persistence contract for checkpoints and run history.
type Store interface {
	// LastRun returns the checkpoint for a platform, or nil when the
	// platform has never completed a sync.
	LastRun(ctx context.Context, platform string) (*time.Time, error)

	// SetLastRun advances the platform's checkpoint.
	SetLastRun(ctx context.Context, platform string, t time.Time) error

	// StartRun records the beginning of a sync run and returns its ID.
	StartRun(ctx context.Context, platform string, startedAt time.Time) (string, error)

	// CompleteRun marks a run as successfully completed.
	CompleteRun(ctx context.Context, runID string, result *RunResult) error

	// FailRun marks a run as failed with an error message.
	FailRun(ctx context.Context, runID string, errMsg string) error

	// ListRuns returns runs ordered most recent first. A limit of 0 returns
	// everything.
	ListRuns(ctx context.Context, limit int) ([]RunEntry, error)

	Migrate(ctx context.Context) error
	Close() error
}
