package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	HeyReach   HeyReachConfig   `yaml:"heyreach" mapstructure:"heyreach"`
	Instantly  InstantlyConfig  `yaml:"instantly" mapstructure:"instantly"`
	HubSpot    HubSpotConfig    `yaml:"hubspot" mapstructure:"hubspot"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	CRM        CRMConfig        `yaml:"crm" mapstructure:"crm"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Classify   ClassifyConfig   `yaml:"classify" mapstructure:"classify"`
	Slack      SlackConfig      `yaml:"slack" mapstructure:"slack"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	State      StateConfig      `yaml:"state" mapstructure:"state"`
	Sync       SyncConfig       `yaml:"sync" mapstructure:"sync"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// HeyReachConfig holds HeyReach API settings.
type HeyReachConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// InstantlyConfig holds Instantly API settings.
type InstantlyConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	MaxLeads  int     `yaml:"max_leads" mapstructure:"max_leads"`
}

// HubSpotConfig holds HubSpot private-app settings.
type HubSpotConfig struct {
	Token     string  `yaml:"token" mapstructure:"token"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// CRMConfig selects the CRM backend contacts are synced into.
type CRMConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ClassifyConfig configures reply classification.
type ClassifyConfig struct {
	// VocabPath points at a YAML vocabulary file overriding the built-in
	// keyword and sector patterns. Empty means use the defaults.
	VocabPath string `yaml:"vocab_path" mapstructure:"vocab_path"`
}

// SlackConfig holds Slack notification settings.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// NotionConfig holds Notion API credentials and the follow-up log database.
type NotionConfig struct {
	Token      string `yaml:"token" mapstructure:"token"`
	FollowupDB string `yaml:"followup_db" mapstructure:"followup_db"`
}

// StateConfig configures the checkpoint/run-log backend.
type StateConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SyncConfig configures sync pass behavior.
type SyncConfig struct {
	BatchDelayMillis int `yaml:"batch_delay_ms" mapstructure:"batch_delay_ms"`
	CampaignLimit    int `yaml:"campaign_limit" mapstructure:"campaign_limit"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("OUTREACH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("heyreach.rate_limit", 5.0)
	v.SetDefault("instantly.rate_limit", 5.0)
	v.SetDefault("instantly.max_leads", 1000)
	v.SetDefault("hubspot.rate_limit", 9.0)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("crm.backend", "hubspot")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("state.driver", "sqlite")
	v.SetDefault("state.path", "outreach-sync.db")
	v.SetDefault("state.max_conns", 5)
	v.SetDefault("state.min_conns", 1)
	v.SetDefault("sync.batch_delay_ms", 500)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command needs are present. Mode is
// the command being run: "sync", "followups", or "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	switch c.State.Driver {
	case "sqlite":
		if c.State.Path == "" {
			problems = append(problems, "state.path is required for the sqlite driver")
		}
	case "postgres":
		if c.State.DatabaseURL == "" {
			problems = append(problems, "state.database_url is required for the postgres driver")
		}
	default:
		problems = append(problems, "state.driver must be sqlite or postgres")
	}

	switch c.CRM.Backend {
	case "hubspot":
		if c.HubSpot.Token == "" {
			problems = append(problems, "hubspot.token is required")
		}
	case "salesforce":
		if c.Salesforce.ClientID == "" {
			problems = append(problems, "salesforce.client_id is required")
		}
		if c.Salesforce.Username == "" {
			problems = append(problems, "salesforce.username is required")
		}
		if c.Salesforce.KeyPath == "" {
			problems = append(problems, "salesforce.key_path is required")
		}
	default:
		problems = append(problems, "crm.backend must be hubspot or salesforce")
	}

	switch mode {
	case "sync":
		if c.HeyReach.Key == "" && c.Instantly.Key == "" {
			problems = append(problems, "heyreach.key or instantly.key is required")
		}
		if c.Sync.BatchDelayMillis < 0 {
			problems = append(problems, "sync.batch_delay_ms must be >= 0")
		}
	case "followups":
		// CRM checks above cover everything; Slack and Notion are optional.
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
