package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/crm"
	"github.com/sells-group/outreach-sync/internal/notify"
)

// FollowupChecker finds postponed contacts whose follow-up date has arrived,
// reminds the team in Slack, and clears the postponed flag so nobody is
// reminded twice.
type FollowupChecker struct {
	crm   crm.Client
	slack *notify.Slack
	now   func() time.Time
}

// FollowupOption configures a FollowupChecker.
type FollowupOption func(*FollowupChecker)

// WithFollowupClock overrides the wall clock, for tests.
func WithFollowupClock(now func() time.Time) FollowupOption {
	return func(f *FollowupChecker) {
		f.now = now
	}
}

// NewFollowupChecker creates a checker over the given CRM and Slack sink.
func NewFollowupChecker(crmClient crm.Client, slack *notify.Slack, opts ...FollowupOption) *FollowupChecker {
	f := &FollowupChecker{
		crm:   crmClient,
		slack: slack,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FollowupReport summarizes one checker run.
type FollowupReport struct {
	Due      int      `json:"due"`
	Notified int      `json:"notified"`
	Cleared  int      `json:"cleared"`
	Errored  int      `json:"errored"`
	Errors   []string `json:"errors,omitempty"`
}

// Run queries the CRM for due follow-ups and processes each contact
// independently: a failure on one contact never blocks the rest. A contact
// whose reminder fails keeps its postponed flag and is retried next run.
func (f *FollowupChecker) Run(ctx context.Context) (*FollowupReport, error) {
	contacts, err := f.crm.SearchDueFollowups(ctx, f.now())
	if err != nil {
		return nil, eris.Wrap(err, "syncer: search due followups")
	}

	rep := &FollowupReport{Due: len(contacts)}
	for _, contact := range contacts {
		if f.slack != nil && f.slack.Enabled() {
			if err := f.slack.FollowupReminder(ctx, contact); err != nil {
				zap.L().Warn("syncer: followup reminder failed",
					zap.String("contact", contact.ID),
					zap.Error(err),
				)
				rep.Errored++
				rep.Errors = append(rep.Errors, fmt.Sprintf("remind %s: %s", contact.ID, err))
				continue
			}
			rep.Notified++
		}
		if err := f.crm.ClearPostponed(ctx, contact.ID); err != nil {
			zap.L().Warn("syncer: clearing postponed flag failed",
				zap.String("contact", contact.ID),
				zap.Error(err),
			)
			rep.Errored++
			rep.Errors = append(rep.Errors, fmt.Sprintf("clear %s: %s", contact.ID, err))
			continue
		}
		rep.Cleared++
	}

	zap.L().Info("followup check complete",
		zap.Int("due", rep.Due),
		zap.Int("notified", rep.Notified),
		zap.Int("cleared", rep.Cleared),
		zap.Int("errored", rep.Errored),
	)
	return rep, nil
}
