// Package syncer runs the incremental sync pass: campaigns → conversations →
// normalize → dedupe → upsert. Failures below the pass level are contained
// and counted; the checkpoint advances to the pass-start time only after the
// pass completes, so an interrupted pass is re-covered in full next run.
package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/classify"
	"github.com/sells-group/outreach-sync/internal/crm"
	"github.com/sells-group/outreach-sync/internal/dedupe"
	"github.com/sells-group/outreach-sync/internal/model"
	"github.com/sells-group/outreach-sync/internal/normalize"
	"github.com/sells-group/outreach-sync/internal/notify"
	"github.com/sells-group/outreach-sync/internal/state"
)

const defaultBatchDelay = 500 * time.Millisecond

// Syncer drives one provider's sync passes.
type Syncer struct {
	source Source
	crm    crm.Client
	store  state.Store
	norm   *normalize.Normalizer

	slack     *notify.Slack
	followLog *notify.FollowupLog
	warmup    func(context.Context)

	limit      int
	full       bool
	batchDelay time.Duration
	now        func() time.Time
	sleep      func(time.Duration)
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithCampaignLimit caps the number of campaigns processed per pass.
func WithCampaignLimit(n int) Option {
	return func(s *Syncer) {
		s.limit = n
	}
}

// WithFullResync ignores the checkpoint and re-processes every conversation.
func WithFullResync() Option {
	return func(s *Syncer) {
		s.full = true
	}
}

// WithSlack enables postponed-reply notifications.
func WithSlack(slack *notify.Slack) Option {
	return func(s *Syncer) {
		s.slack = slack
	}
}

// WithFollowupLog enables Notion follow-up logging for postponed leads.
func WithFollowupLog(log *notify.FollowupLog) Option {
	return func(s *Syncer) {
		s.followLog = log
	}
}

// WithWarmup runs fn once at the start of a non-empty pass, before any
// conversations are classified.
func WithWarmup(fn func(context.Context)) Option {
	return func(s *Syncer) {
		s.warmup = fn
	}
}

// WithBatchDelay overrides the fixed pause between upsert batches.
func WithBatchDelay(d time.Duration) Option {
	return func(s *Syncer) {
		s.batchDelay = d
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Syncer) {
		s.now = now
	}
}

// WithSleep overrides the inter-batch sleep, for tests.
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *Syncer) {
		s.sleep = sleep
	}
}

// New creates a Syncer for one source.
func New(source Source, crmClient crm.Client, store state.Store, norm *normalize.Normalizer, opts ...Option) *Syncer {
	s := &Syncer{
		source:     source,
		crm:        crmClient,
		store:      store,
		norm:       norm,
		batchDelay: defaultBatchDelay,
		now:        time.Now,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes one synchronous sync pass and returns its report. A returned
// error means the pass did not complete and the checkpoint was not advanced;
// contained failures are reported in Report.Errors instead.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	passStart := s.now().UTC()
	log := zap.L().With(zap.String("platform", s.source.Platform()))

	var since *time.Time
	if !s.full {
		cp, err := s.store.LastRun(ctx, s.source.Platform())
		if err != nil {
			return nil, eris.Wrap(err, "syncer: read checkpoint")
		}
		since = cp
	}

	runID, err := s.store.StartRun(ctx, s.source.Platform(), passStart)
	if err != nil {
		return nil, eris.Wrap(err, "syncer: record run start")
	}

	rep := &Report{Platform: s.source.Platform(), StartedAt: passStart}

	campaigns, err := s.source.Campaigns(ctx)
	if err != nil {
		err = eris.Wrap(err, "syncer: list campaigns")
		s.fail(ctx, runID, err)
		return nil, err
	}
	if s.limit > 0 && len(campaigns) > s.limit {
		campaigns = campaigns[:s.limit]
	}
	rep.Campaigns = len(campaigns)

	if s.warmup != nil && len(campaigns) > 0 {
		s.warmup(ctx)
	}

	cache := classify.SectorCache{}
	var records []*model.LeadRecord
	for _, campaign := range campaigns {
		convs, err := s.source.Conversations(ctx, campaign)
		if err != nil {
			log.Warn("campaign fetch failed",
				zap.String("campaign", campaign.Name),
				zap.Error(err),
			)
			rep.addError(fmt.Sprintf("campaign %s: %s", campaign.Name, err))
			continue
		}
		for _, conv := range convs {
			rep.Conversations++
			if since != nil {
				if last := conv.LastActivity(); !last.IsZero() && last.Before(*since) {
					rep.Skipped++
					continue
				}
			}
			if rec := s.norm.Normalize(ctx, conv, cache); rec != nil {
				records = append(records, rec)
			}
		}
	}

	records = dedupe.Merge(records)
	rep.Leads = len(records)

	if len(records) == 0 {
		log.Info("nothing to sync")
	} else {
		s.upsertAll(ctx, records, rep)
		s.notifyPostponed(ctx, records, rep)
	}

	// The checkpoint advances to pass-start, not pass-end, so activity that
	// happened mid-pass is picked up again next run.
	if err := s.store.SetLastRun(ctx, s.source.Platform(), passStart); err != nil {
		err = eris.Wrap(err, "syncer: advance checkpoint")
		s.fail(ctx, runID, err)
		return nil, err
	}
	if err := s.store.CompleteRun(ctx, runID, rep.runResult()); err != nil {
		return nil, eris.Wrap(err, "syncer: record run completion")
	}

	log.Info("sync pass complete",
		zap.Int("campaigns", rep.Campaigns),
		zap.Int("conversations", rep.Conversations),
		zap.Int("skipped", rep.Skipped),
		zap.Int("leads", rep.Leads),
		zap.Int("created", rep.Created),
		zap.Int("updated", rep.Updated),
		zap.Int("errored", rep.Errored),
		zap.Int("postponed", rep.Postponed),
	)
	return rep, nil
}

func (s *Syncer) fail(ctx context.Context, runID string, err error) {
	if ferr := s.store.FailRun(ctx, runID, err.Error()); ferr != nil {
		zap.L().Warn("syncer: recording run failure failed", zap.Error(ferr))
	}
}

// notifyPostponed sends the best-effort postponed-reply notifications. The
// sinks never affect the pass outcome.
func (s *Syncer) notifyPostponed(ctx context.Context, records []*model.LeadRecord, rep *Report) {
	for _, rec := range records {
		if !rec.Postponed() || !rec.Responded() {
			continue
		}
		rep.Postponed++
		if s.slack != nil && s.slack.Enabled() {
			if err := s.slack.PostponedReply(ctx, rec); err != nil {
				zap.L().Warn("syncer: postponed notification failed",
					zap.String("lead", rec.ContactKey()),
					zap.Error(err),
				)
			}
		}
		if s.followLog != nil && s.followLog.Enabled() {
			if err := s.followLog.Record(ctx, rec); err != nil {
				zap.L().Warn("syncer: followup log failed",
					zap.String("lead", rec.ContactKey()),
					zap.Error(err),
				)
			}
		}
	}
}
