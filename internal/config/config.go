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
	Ledger     LedgerConfig     `yaml:"ledger" mapstructure:"ledger"`
	JSearch    JSearchConfig    `yaml:"jsearch" mapstructure:"jsearch"`
	LinkedIn   LinkedInConfig   `yaml:"linkedin" mapstructure:"linkedin"`
	Hunter     HunterConfig     `yaml:"hunter" mapstructure:"hunter"`
	Clearout   ClearoutConfig   `yaml:"clearout" mapstructure:"clearout"`
	Instantly  InstantlyConfig  `yaml:"instantly" mapstructure:"instantly"`
	Supabase   SupabaseConfig   `yaml:"supabase" mapstructure:"supabase"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Pipeline   PipelineConfig   `yaml:"pipeline" mapstructure:"pipeline"`
	Resilience ResilienceConfig `yaml:"resilience" mapstructure:"resilience"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LedgerConfig configures the processed-jobs store.
type LedgerConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// JSearchConfig holds job search API credentials.
type JSearchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// LinkedInConfig holds people-data API credentials and quota.
type LinkedInConfig struct {
	Key           string `yaml:"key" mapstructure:"key"`
	BaseURL       string `yaml:"base_url" mapstructure:"base_url"`
	RatePerMinute int    `yaml:"rate_per_minute" mapstructure:"rate_per_minute"`
}

// HunterConfig holds email discovery API settings.
type HunterConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Limit   int    `yaml:"limit" mapstructure:"limit"`
}

// ClearoutConfig holds domain resolution API settings.
type ClearoutConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// InstantlyConfig holds outreach campaign API settings.
type InstantlyConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// SupabaseConfig holds the event sink backend settings.
type SupabaseConfig struct {
	URL         string `yaml:"url" mapstructure:"url"`
	Key         string `yaml:"key" mapstructure:"key"`
	EventsTable string `yaml:"events_table" mapstructure:"events_table"`
}

// AnthropicConfig holds query parsing model settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// PipelineConfig configures orchestration behavior.
type PipelineConfig struct {
	MaxJobsPerCity   int  `yaml:"max_jobs_per_city" mapstructure:"max_jobs_per_city"`
	MaxLeadsPerRun   int  `yaml:"max_leads_per_run" mapstructure:"max_leads_per_run"`
	CompanyDelaySecs int  `yaml:"company_delay_secs" mapstructure:"company_delay_secs"`
	CityDelaySecs    int  `yaml:"city_delay_secs" mapstructure:"city_delay_secs"`
	DefaultAgeHours  int  `yaml:"default_age_hours" mapstructure:"default_age_hours"`
	CampaignHandoff  bool `yaml:"campaign_handoff" mapstructure:"campaign_handoff"`
}

// ResilienceConfig tunes vendor-call retries and the email-discovery
// circuit breaker. Zero values fall back to the library defaults.
type ResilienceConfig struct {
	RetryMaxAttempts      int     `yaml:"retry_max_attempts" mapstructure:"retry_max_attempts"`
	RetryInitialBackoffMs int     `yaml:"retry_initial_backoff_ms" mapstructure:"retry_initial_backoff_ms"`
	RetryMaxBackoffMs     int     `yaml:"retry_max_backoff_ms" mapstructure:"retry_max_backoff_ms"`
	RetryMultiplier       float64 `yaml:"retry_multiplier" mapstructure:"retry_multiplier"`
	RetryJitter           float64 `yaml:"retry_jitter" mapstructure:"retry_jitter"`
	BreakerThreshold      int     `yaml:"breaker_failure_threshold" mapstructure:"breaker_failure_threshold"`
	BreakerResetSecs      int     `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
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
	v.SetEnvPrefix("RECRUIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ledger.driver", "sqlite")
	v.SetDefault("ledger.path", "recruit.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("jsearch.base_url", "https://jsearch.p.rapidapi.com")
	v.SetDefault("linkedin.base_url", "https://fresh-linkedin-scraper-api.p.rapidapi.com/api/v1")
	v.SetDefault("linkedin.rate_per_minute", 18)
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.limit", 10)
	v.SetDefault("clearout.base_url", "https://api.clearout.io/public")
	v.SetDefault("instantly.base_url", "https://api.instantly.ai/api/v1")
	v.SetDefault("supabase.events_table", "pipeline_events")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5")
	v.SetDefault("pipeline.max_jobs_per_city", 25)
	v.SetDefault("pipeline.max_leads_per_run", 100)
	v.SetDefault("pipeline.company_delay_secs", 2)
	v.SetDefault("pipeline.city_delay_secs", 5)
	v.SetDefault("pipeline.default_age_hours", 72)
	v.SetDefault("pipeline.campaign_handoff", false)
	v.SetDefault("resilience.retry_max_attempts", 3)
	v.SetDefault("resilience.retry_jitter", 0.25)
	v.SetDefault("resilience.breaker_failure_threshold", 5)
	v.SetDefault("resilience.breaker_reset_secs", 30)

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

// Validate checks that the fields required by the given command mode are
// present and in range. Errors name every missing field, not just the
// first.
func (c *Config) Validate(mode string) error {
	var problems []string

	checkRange := func() {
		if c.Pipeline.MaxJobsPerCity < 1 || c.Pipeline.MaxJobsPerCity > 200 {
			problems = append(problems, "pipeline.max_jobs_per_city must be between 1 and 200")
		}
		if c.Pipeline.MaxLeadsPerRun < 1 {
			problems = append(problems, "pipeline.max_leads_per_run must be > 0")
		}
		if c.LinkedIn.RatePerMinute < 1 {
			problems = append(problems, "linkedin.rate_per_minute must be > 0")
		}
	}

	switch mode {
	case "hunt":
		if c.JSearch.Key == "" {
			problems = append(problems, "jsearch.key is required")
		}
		if c.LinkedIn.Key == "" {
			problems = append(problems, "linkedin.key is required")
		}
		if c.Hunter.Key == "" {
			problems = append(problems, "hunter.key is required")
		}
		if c.Pipeline.CampaignHandoff && c.Instantly.Key == "" {
			problems = append(problems, "instantly.key is required when pipeline.campaign_handoff is on")
		}
		if c.Ledger.Driver == "postgres" && c.Ledger.DatabaseURL == "" {
			problems = append(problems, "ledger.database_url is required for the postgres driver")
		}
		checkRange()
	case "ledger", "blacklist", "export":
		if c.Ledger.Driver == "postgres" && c.Ledger.DatabaseURL == "" {
			problems = append(problems, "ledger.database_url is required for the postgres driver")
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
