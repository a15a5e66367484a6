package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cyphera/billing-reconciler/internal/helpers"
	"github.com/joho/godotenv"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultRunBudget         = 10 * time.Minute
	DefaultPageSize          = 100
	DefaultPassAConcurrency  = 1
	DefaultProviderRateLimit = 20
	DefaultProviderRetryMax  = 0
	DefaultEmailFromAddress  = "billing@lunary.app"
	DefaultEmailFromName     = "Billing Reconciler"
)

// Config is the runtime configuration of a reconciliation run. Secrets
// (provider key, database DSN, email API key) are resolved separately
// through the secrets manager client.
type Config struct {
	Stage string

	DryRun           bool
	SkipLocalPass    bool
	SkipProviderPass bool

	RunBudget         time.Duration
	PageSize          int64
	PassAConcurrency  int
	ProviderRateLimit float64
	ProviderRetryMax  int

	ExcludedIdentities []string
	PlanPriceIDs       map[string]string

	ReportWebhookURL     string
	ReportEmailTo        []string
	ReportEmailFrom      string
	ReportEmailFromName  string
	ReportEmailOnSuccess bool
	ReportSQSQueueURL    string
	PushgatewayURL       string

	// RunLockKey enables a Postgres advisory lock around the run when non-zero.
	RunLockKey int64
}

// LoadEnvFile loads a .env file if present. A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil {
			return nil
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		Stage:               getEnvWithDefault("STAGE", helpers.StageLocal),
		ReportWebhookURL:    os.Getenv("REPORT_WEBHOOK_URL"),
		ReportEmailTo:       splitList(os.Getenv("REPORT_EMAIL_TO")),
		ReportEmailFrom:     getEnvWithDefault("EMAIL_FROM_ADDRESS", DefaultEmailFromAddress),
		ReportEmailFromName: getEnvWithDefault("EMAIL_FROM_NAME", DefaultEmailFromName),
		ReportSQSQueueURL:   os.Getenv("REPORT_SQS_QUEUE_URL"),
		PushgatewayURL:      os.Getenv("PUSHGATEWAY_URL"),
		ExcludedIdentities:  splitList(os.Getenv("EXCLUDED_IDENTITIES")),
	}

	if !helpers.IsValidStage(cfg.Stage) {
		errs = append(errs, fmt.Errorf("invalid STAGE %q: must be one of %s, %s, %s",
			cfg.Stage, helpers.StageProd, helpers.StageDev, helpers.StageLocal))
	}

	cfg.DryRun = parseBool("DRY_RUN", false, &errs)
	cfg.SkipLocalPass = parseBool("SKIP_LOCAL_PASS", false, &errs)
	cfg.SkipProviderPass = parseBool("SKIP_PROVIDER_PASS", false, &errs)
	cfg.ReportEmailOnSuccess = parseBool("REPORT_EMAIL_ON_SUCCESS", false, &errs)

	cfg.RunBudget = parseDuration("RUN_BUDGET", DefaultRunBudget, &errs)
	cfg.PageSize = int64(parseInt("PAGE_SIZE", DefaultPageSize, &errs))
	cfg.PassAConcurrency = parseInt("PASS_A_CONCURRENCY", DefaultPassAConcurrency, &errs)
	cfg.ProviderRetryMax = parseInt("PROVIDER_RETRY_MAX", DefaultProviderRetryMax, &errs)
	cfg.RunLockKey = int64(parseInt("RUN_LOCK_KEY", 0, &errs))

	if raw := os.Getenv("PROVIDER_RATE_LIMIT"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			errs = append(errs, fmt.Errorf("invalid PROVIDER_RATE_LIMIT %q", raw))
		} else {
			cfg.ProviderRateLimit = v
		}
	} else {
		cfg.ProviderRateLimit = DefaultProviderRateLimit
	}

	priceIDs, err := ParsePlanPriceIDs(os.Getenv("PLAN_PRICE_IDS"))
	if err != nil {
		errs = append(errs, err)
	}
	cfg.PlanPriceIDs = priceIDs

	if cfg.PageSize < 1 || cfg.PageSize > 100 {
		errs = append(errs, fmt.Errorf("PAGE_SIZE must be between 1 and 100, got %d", cfg.PageSize))
	}
	if cfg.PassAConcurrency < 1 {
		errs = append(errs, fmt.Errorf("PASS_A_CONCURRENCY must be at least 1, got %d", cfg.PassAConcurrency))
	}
	if cfg.ProviderRetryMax < 0 {
		errs = append(errs, fmt.Errorf("PROVIDER_RETRY_MAX must not be negative, got %d", cfg.ProviderRetryMax))
	}
	if cfg.RunBudget <= 0 {
		errs = append(errs, fmt.Errorf("RUN_BUDGET must be positive, got %s", cfg.RunBudget))
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cfg, nil
}

// ParsePlanPriceIDs parses "price_a=lunary_plus,price_b=lunary_plus_ai" into a map.
func ParsePlanPriceIDs(raw string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range splitList(raw) {
		priceID, plan, ok := strings.Cut(pair, "=")
		priceID, plan = strings.TrimSpace(priceID), strings.TrimSpace(plan)
		if !ok || priceID == "" || plan == "" {
			return nil, fmt.Errorf("invalid PLAN_PRICE_IDS entry %q: expected price_id=plan", pair)
		}
		out[priceID] = plan
	}
	return out, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseBool(key string, def bool, errs *[]error) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return def
	}
	return v
}

func parseInt(key string, def int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return def
	}
	return v
}

func parseDuration(key string, def time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s %q: %w", key, raw, err))
		return def
	}
	return v
}
