package main

import (
	"context"
	"os"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-sync/internal/classify"
	"github.com/sells-group/outreach-sync/internal/crm"
	"github.com/sells-group/outreach-sync/internal/normalize"
	"github.com/sells-group/outreach-sync/internal/notify"
	"github.com/sells-group/outreach-sync/internal/state"
	"github.com/sells-group/outreach-sync/internal/syncer"
	anthropicpkg "github.com/sells-group/outreach-sync/pkg/anthropic"
	"github.com/sells-group/outreach-sync/pkg/heyreach"
	"github.com/sells-group/outreach-sync/pkg/hubspot"
	"github.com/sells-group/outreach-sync/pkg/instantly"
	"github.com/sells-group/outreach-sync/pkg/notion"
	sfpkg "github.com/sells-group/outreach-sync/pkg/salesforce"
)

// initState opens the checkpoint/run-log store and runs migrations.
func initState(ctx context.Context) (state.Store, error) {
	var (
		st  state.Store
		err error
	)
	switch cfg.State.Driver {
	case "sqlite":
		st, err = state.NewSQLite(cfg.State.Path)
	case "postgres":
		st, err = state.NewPostgres(ctx, cfg.State.DatabaseURL, &state.PoolConfig{
			MaxConns: cfg.State.MaxConns,
			MinConns: cfg.State.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported state driver: %s", cfg.State.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate state store")
	}
	return st, nil
}

// initCRM builds the contacts client for the configured backend.
func initCRM() (crm.Client, error) {
	switch cfg.CRM.Backend {
	case "hubspot":
		opts := []hubspot.Option{}
		if cfg.HubSpot.BaseURL != "" {
			opts = append(opts, hubspot.WithBaseURL(cfg.HubSpot.BaseURL))
		}
		if cfg.HubSpot.RateLimit > 0 {
			opts = append(opts, hubspot.WithRateLimit(cfg.HubSpot.RateLimit, 1))
		}
		return crm.NewHubSpot(hubspot.NewClient(cfg.HubSpot.Token, opts...)), nil
	case "salesforce":
		pemData, err := os.ReadFile(cfg.Salesforce.KeyPath)
		if err != nil {
			return nil, eris.Wrap(err, "read salesforce JWT private key")
		}
		sf, err := salesforce.Init(salesforce.Creds{
			Domain:         cfg.Salesforce.LoginURL,
			Username:       cfg.Salesforce.Username,
			ConsumerKey:    cfg.Salesforce.ClientID,
			ConsumerRSAPem: string(pemData),
		})
		if err != nil {
			return nil, eris.Wrap(err, "init salesforce")
		}
		return crm.NewSalesforce(sfpkg.NewClient(sf)), nil
	default:
		return nil, eris.Errorf("unsupported crm backend: %s", cfg.CRM.Backend)
	}
}

// initNormalizer builds the reply classifier and lead normalizer. The
// returned warmup function primes the Anthropic prompt cache and is nil
// when classification runs on keywords alone.
func initNormalizer() (*normalize.Normalizer, func(context.Context), error) {
	vocab, err := classify.LoadVocabulary(cfg.Classify.VocabPath)
	if err != nil {
		return nil, nil, err
	}
	keyword := classify.NewKeyword(vocab)

	var (
		classifier *classify.Classifier
		warmup     func(context.Context)
	)
	if cfg.Anthropic.Key != "" {
		ai := classify.NewAI(anthropicpkg.NewClient(cfg.Anthropic.Key), cfg.Anthropic.Model)
		classifier = classify.NewClassifier(keyword, classify.WithPrimary(ai))
		warmup = ai.Warm
	} else {
		zap.L().Warn("anthropic key not set, classifying replies by keywords only")
		classifier = classify.NewClassifier(keyword)
	}

	return normalize.New(classifier), warmup, nil
}

// initNotifiers builds the optional Slack and Notion follow-up sinks.
func initNotifiers() (*notify.Slack, *notify.FollowupLog) {
	var slack *notify.Slack
	if cfg.Slack.WebhookURL != "" {
		slack = notify.NewSlack(cfg.Slack.WebhookURL)
	}

	var followLog *notify.FollowupLog
	if cfg.Notion.Token != "" && cfg.Notion.FollowupDB != "" {
		followLog = notify.NewFollowupLog(notion.NewClient(cfg.Notion.Token), cfg.Notion.FollowupDB)
	}

	return slack, followLog
}

// buildSyncer wires a full sync pass for a platform. The caller owns the
// returned store and must close it after the pass.
func buildSyncer(ctx context.Context, platform string, limit int, full bool) (*syncer.Syncer, state.Store, error) {
	source, err := initSource(platform)
	if err != nil {
		return nil, nil, err
	}

	st, err := initState(ctx)
	if err != nil {
		return nil, nil, err
	}

	crmClient, err := initCRM()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	norm, warmup, err := initNormalizer()
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	slack, followLog := initNotifiers()

	opts := []syncer.Option{
		syncer.WithBatchDelay(time.Duration(cfg.Sync.BatchDelayMillis) * time.Millisecond),
	}
	if limit == 0 {
		limit = cfg.Sync.CampaignLimit
	}
	if limit > 0 {
		opts = append(opts, syncer.WithCampaignLimit(limit))
	}
	if full {
		opts = append(opts, syncer.WithFullResync())
	}
	if slack != nil {
		opts = append(opts, syncer.WithSlack(slack))
	}
	if followLog != nil {
		opts = append(opts, syncer.WithFollowupLog(followLog))
	}
	if warmup != nil {
		opts = append(opts, syncer.WithWarmup(warmup))
	}

	return syncer.New(source, crmClient, st, norm, opts...), st, nil
}

// initSource builds the outreach platform source by name.
func initSource(platform string) (syncer.Source, error) {
	switch platform {
	case "heyreach":
		if cfg.HeyReach.Key == "" {
			return nil, eris.New("heyreach.key is required (OUTREACH_HEYREACH_KEY)")
		}
		opts := []heyreach.Option{}
		if cfg.HeyReach.BaseURL != "" {
			opts = append(opts, heyreach.WithBaseURL(cfg.HeyReach.BaseURL))
		}
		if cfg.HeyReach.RateLimit > 0 {
			opts = append(opts, heyreach.WithRateLimit(cfg.HeyReach.RateLimit, 1))
		}
		return syncer.NewHeyReachSource(heyreach.NewClient(cfg.HeyReach.Key, opts...)), nil
	case "instantly":
		if cfg.Instantly.Key == "" {
			return nil, eris.New("instantly.key is required (OUTREACH_INSTANTLY_KEY)")
		}
		opts := []instantly.Option{}
		if cfg.Instantly.BaseURL != "" {
			opts = append(opts, instantly.WithBaseURL(cfg.Instantly.BaseURL))
		}
		if cfg.Instantly.RateLimit > 0 {
			opts = append(opts, instantly.WithRateLimit(cfg.Instantly.RateLimit, 1))
		}
		client := instantly.NewClient(cfg.Instantly.Key, opts...)
		return syncer.NewInstantlySource(client, syncer.WithMaxLeads(cfg.Instantly.MaxLeads)), nil
	default:
		return nil, eris.Errorf("unknown platform: %s", platform)
	}
}
