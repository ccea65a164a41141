package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Equal(t, "recruit.db", cfg.Ledger.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "https://jsearch.p.rapidapi.com", cfg.JSearch.BaseURL)
	// These defaults must stay in lockstep with the client packages'
	// own defaults; a divergent host breaks every vendor call.
	assert.Equal(t, "https://fresh-linkedin-scraper-api.p.rapidapi.com/api/v1", cfg.LinkedIn.BaseURL)
	assert.Equal(t, "https://api.instantly.ai/api/v1", cfg.Instantly.BaseURL)
	assert.Equal(t, 18, cfg.LinkedIn.RatePerMinute)
	assert.Equal(t, "https://api.hunter.io/v2", cfg.Hunter.BaseURL)
	assert.Equal(t, 10, cfg.Hunter.Limit)
	assert.Equal(t, "https://api.clearout.io/public", cfg.Clearout.BaseURL)
	assert.Equal(t, "pipeline_events", cfg.Supabase.EventsTable)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Anthropic.Model)
	assert.Equal(t, 25, cfg.Pipeline.MaxJobsPerCity)
	assert.Equal(t, 100, cfg.Pipeline.MaxLeadsPerRun)
	assert.Equal(t, 2, cfg.Pipeline.CompanyDelaySecs)
	assert.Equal(t, 5, cfg.Pipeline.CityDelaySecs)
	assert.Equal(t, 72, cfg.Pipeline.DefaultAgeHours)
	assert.False(t, cfg.Pipeline.CampaignHandoff)
	assert.Equal(t, 3, cfg.Resilience.RetryMaxAttempts)
	assert.InDelta(t, 0.25, cfg.Resilience.RetryJitter, 0.001)
	assert.Equal(t, 5, cfg.Resilience.BreakerThreshold)
	assert.Equal(t, 30, cfg.Resilience.BreakerResetSecs)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
ledger:
  driver: postgres
  database_url: postgres://localhost/recruit
log:
  level: debug
  format: console
pipeline:
  max_jobs_per_city: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, "postgres://localhost/recruit", cfg.Ledger.DatabaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Pipeline.MaxJobsPerCity)
	// Defaults still apply for unset values
	assert.Equal(t, 100, cfg.Pipeline.MaxLeadsPerRun)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
ledger:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("RECRUIT_LEDGER_DRIVER", "postgres")
	t.Setenv("RECRUIT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Ledger.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("RECRUIT_PIPELINE_MAX_JOBS_PER_CITY", "50")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Pipeline.MaxJobsPerCity)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validHunt returns a Config passing hunt-mode validation.
func validHunt() *Config {
	cfg := &Config{}
	cfg.Ledger.Driver = "sqlite"
	cfg.JSearch.Key = "rapid-key"
	cfg.LinkedIn.Key = "rapid-key"
	cfg.LinkedIn.RatePerMinute = 18
	cfg.Hunter.Key = "hunter-key"
	cfg.Pipeline.MaxJobsPerCity = 25
	cfg.Pipeline.MaxLeadsPerRun = 100
	return cfg
}

func TestValidateHunt_AllPresent(t *testing.T) {
	assert.NoError(t, validHunt().Validate("hunt"))
}

func TestValidateHunt_MissingKeys(t *testing.T) {
	cfg := validHunt()
	cfg.JSearch.Key = ""
	cfg.Hunter.Key = ""

	err := cfg.Validate("hunt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jsearch.key is required")
	assert.Contains(t, err.Error(), "hunter.key is required")
}

func TestValidateHunt_CampaignHandoffNeedsInstantly(t *testing.T) {
	cfg := validHunt()
	cfg.Pipeline.CampaignHandoff = true

	err := cfg.Validate("hunt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instantly.key")

	cfg.Instantly.Key = "inst-key"
	assert.NoError(t, cfg.Validate("hunt"))
}

func TestValidateHunt_PostgresNeedsURL(t *testing.T) {
	cfg := validHunt()
	cfg.Ledger.Driver = "postgres"

	err := cfg.Validate("hunt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.database_url")
}

func TestValidateHunt_Bounds(t *testing.T) {
	cfg := validHunt()

	cfg.Pipeline.MaxJobsPerCity = 0
	err := cfg.Validate("hunt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_jobs_per_city must be between 1 and 200")

	cfg.Pipeline.MaxJobsPerCity = 201
	err = cfg.Validate("hunt")
	assert.Error(t, err)

	cfg.Pipeline.MaxJobsPerCity = 200
	assert.NoError(t, cfg.Validate("hunt"))
}

func TestValidateLedgerMode(t *testing.T) {
	cfg := &Config{}
	cfg.Ledger.Driver = "sqlite"
	assert.NoError(t, cfg.Validate("ledger"))

	cfg.Ledger.Driver = "postgres"
	err := cfg.Validate("ledger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledger.database_url")
}

func TestValidateUnknownMode(t *testing.T) {
	err := (&Config{}).Validate("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
