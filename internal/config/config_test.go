package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cyphera/billing-reconciler/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STAGE", "local")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Stage)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, config.DefaultRunBudget, cfg.RunBudget)
	assert.Equal(t, int64(config.DefaultPageSize), cfg.PageSize)
	assert.Equal(t, 1, cfg.PassAConcurrency)
	assert.Equal(t, 0, cfg.ProviderRetryMax)
	assert.Equal(t, float64(config.DefaultProviderRateLimit), cfg.ProviderRateLimit)
	assert.Empty(t, cfg.ExcludedIdentities)
	assert.Empty(t, cfg.PlanPriceIDs)
	assert.Zero(t, cfg.RunLockKey)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STAGE", "prod")
	t.Setenv("DRY_RUN", "true")
	t.Setenv("RUN_BUDGET", "90s")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("PASS_A_CONCURRENCY", "4")
	t.Setenv("PROVIDER_RETRY_MAX", "2")
	t.Setenv("PROVIDER_RATE_LIMIT", "5.5")
	t.Setenv("EXCLUDED_IDENTITIES", " QA@Example.com , internal ,")
	t.Setenv("PLAN_PRICE_IDS", "price_1=lunary_plus, price_2=lunary_plus_ai_annual")
	t.Setenv("REPORT_EMAIL_TO", "ops@example.com,billing@example.com")
	t.Setenv("RUN_LOCK_KEY", "4242")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Stage)
	assert.True(t, cfg.DryRun)
	assert.Equal(t, 90*time.Second, cfg.RunBudget)
	assert.Equal(t, int64(50), cfg.PageSize)
	assert.Equal(t, 4, cfg.PassAConcurrency)
	assert.Equal(t, 2, cfg.ProviderRetryMax)
	assert.Equal(t, 5.5, cfg.ProviderRateLimit)
	assert.Equal(t, []string{"QA@Example.com", "internal"}, cfg.ExcludedIdentities)
	assert.Equal(t, map[string]string{"price_1": "lunary_plus", "price_2": "lunary_plus_ai_annual"}, cfg.PlanPriceIDs)
	assert.Equal(t, []string{"ops@example.com", "billing@example.com"}, cfg.ReportEmailTo)
	assert.Equal(t, int64(4242), cfg.RunLockKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("STAGE", "staging")
	t.Setenv("PAGE_SIZE", "500")
	t.Setenv("RUN_BUDGET", "forever")
	t.Setenv("PLAN_PRICE_IDS", "price_1")

	cfg, err := config.Load()
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid STAGE")
	assert.Contains(t, err.Error(), "PAGE_SIZE")
	assert.Contains(t, err.Error(), "RUN_BUDGET")
	assert.Contains(t, err.Error(), "PLAN_PRICE_IDS")
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, config.LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECONCILER_TEST_VALUE=loaded\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RECONCILER_TEST_VALUE") })

	require.NoError(t, config.LoadEnvFile(path))
	assert.Equal(t, "loaded", os.Getenv("RECONCILER_TEST_VALUE"))
}
