package main

import (
	"context"
	"fmt"
	"os"
	"time"

	awsclient "github.com/cyphera/billing-reconciler/internal/client/aws"
	httpClient "github.com/cyphera/billing-reconciler/internal/client/http"
	stripesvc "github.com/cyphera/billing-reconciler/internal/client/payment_sync/stripe"
	"github.com/cyphera/billing-reconciler/internal/config"
	"github.com/cyphera/billing-reconciler/internal/db"
	"github.com/cyphera/billing-reconciler/internal/helpers"
	"github.com/cyphera/billing-reconciler/internal/logger"
	"github.com/cyphera/billing-reconciler/internal/reconcile"
	"github.com/cyphera/billing-reconciler/internal/report"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// loadRuntime loads the .env file, reads configuration, and initializes the
// global logger.
func loadRuntime() (*config.Config, error) {
	if err := config.LoadEnvFile(".env"); err != nil {
		logger.InitLogger(fallbackStage())
		return nil, err
	}
	cfg, err := config.Load()
	if err != nil {
		logger.InitLogger(fallbackStage())
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.InitLogger(cfg.Stage)
	return cfg, nil
}

// fallbackStage picks the logger stage when the configuration cannot be loaded.
func fallbackStage() string {
	if stage := os.Getenv("STAGE"); helpers.IsValidStage(stage) {
		return stage
	}
	return helpers.StageLocal
}

// configFailureNotifier returns the webhook sink, the only sink that needs
// nothing beyond its URL. Returns nil when no webhook is configured.
func configFailureNotifier() report.Notifier {
	url := os.Getenv("REPORT_WEBHOOK_URL")
	if url == "" {
		return nil
	}
	return report.NewMultiNotifier(logger.Log.With(zap.String("component", "report")),
		report.NewWebhookNotifier(url, httpClient.NewHTTPClient()))
}

// setupDeps are the pieces built before the engine. They are kept apart so
// a setup failure can still report through whatever sinks were built.
type setupDeps struct {
	awsCfg   *aws.Config
	secrets  *awsclient.SecretsManagerClient
	notifier *report.MultiNotifier
}

// newApplication wires every dependency of a run. On error the returned
// notifier, when non-nil, can still deliver a failure report.
func newApplication(ctx context.Context, cfg *config.Config) (*Application, report.Notifier, error) {
	deps := &setupDeps{}

	awsCfg, err := awsclient.LoadConfig(ctx)
	if err != nil {
		notifier := buildNotifier(ctx, cfg, deps)
		return nil, notifier, err
	}
	deps.awsCfg = &awsCfg
	deps.secrets = awsclient.NewSecretsManagerClient(awsCfg)
	notifier := buildNotifier(ctx, cfg, deps)

	stripeKey, err := deps.secrets.GetSecretString(ctx, "STRIPE_SECRET_KEY_ARN", "STRIPE_SECRET_KEY")
	if err != nil {
		return nil, notifier, fmt.Errorf("failed to load Stripe secret key: %w", err)
	}

	dsn, err := deps.secrets.DatabaseDSN(ctx, helpers.IsDeployedStage(cfg.Stage))
	if err != nil {
		return nil, notifier, fmt.Errorf("failed to resolve database DSN: %w", err)
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		return nil, notifier, err
	}

	provider, err := stripesvc.NewStripeService(stripesvc.Config{
		APIKey:    stripeKey,
		RateLimit: cfg.ProviderRateLimit,
		RetryMax:  cfg.ProviderRetryMax,
	}, logger.Log.With(zap.String("component", "stripe")))
	if err != nil {
		pool.Close()
		return nil, notifier, err
	}
	if err := provider.CheckConnection(ctx); err != nil {
		pool.Close()
		return nil, notifier, fmt.Errorf("stripe connection check failed: %w", err)
	}

	engine := reconcile.NewEngine(reconcile.EngineConfig{
		Queries:            db.New(pool),
		Provider:           provider,
		Logger:             logger.Log,
		PlanPriceIDs:       cfg.PlanPriceIDs,
		ExcludedIdentities: cfg.ExcludedIdentities,
		DryRun:             cfg.DryRun,
		RunBudget:          cfg.RunBudget,
		PageSize:           int(cfg.PageSize),
		PassAConcurrency:   cfg.PassAConcurrency,
	})

	app := &Application{
		engine:       engine,
		notifier:     notifier,
		skipLocal:    cfg.SkipLocalPass,
		skipProvider: cfg.SkipProviderPass,
		cleanup:      pool.Close,
	}
	if cfg.RunLockKey != 0 {
		app.lock = &advisoryLock{pool: pool, key: cfg.RunLockKey}
	}

	logger.Info("Billing reconciler initialized",
		zap.String("stage", cfg.Stage),
		zap.Bool("dry_run", cfg.DryRun),
		zap.Duration("run_budget", cfg.RunBudget),
		zap.Int("report_sinks", notifier.Len()),
		zap.Bool("run_lock", app.lock != nil))
	return app, notifier, nil
}

func newPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database DSN: %w", err)
	}
	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return pool, nil
}

// buildNotifier builds every report sink the configuration and the available
// dependencies allow. Sinks whose prerequisites are missing are left out.
func buildNotifier(ctx context.Context, cfg *config.Config, deps *setupDeps) *report.MultiNotifier {
	var notifiers []report.Notifier

	if cfg.ReportWebhookURL != "" {
		notifiers = append(notifiers, report.NewWebhookNotifier(cfg.ReportWebhookURL, httpClient.NewHTTPClient()))
	}

	if len(cfg.ReportEmailTo) > 0 && deps.secrets != nil {
		apiKey, err := deps.secrets.GetSecretString(ctx, "RESEND_API_KEY_ARN", "RESEND_API_KEY")
		if err != nil {
			logger.Warn("Email reports disabled, no Resend API key", zap.Error(err))
		} else {
			notifiers = append(notifiers, report.NewEmailNotifier(report.EmailConfig{
				APIKey:    apiKey,
				FromEmail: cfg.ReportEmailFrom,
				FromName:  cfg.ReportEmailFromName,
				To:        cfg.ReportEmailTo,
				OnSuccess: cfg.ReportEmailOnSuccess,
			}))
		}
	}

	if cfg.ReportSQSQueueURL != "" && deps.awsCfg != nil {
		notifiers = append(notifiers, report.NewSQSNotifier(sqs.NewFromConfig(*deps.awsCfg), cfg.ReportSQSQueueURL))
	}

	if cfg.PushgatewayURL != "" {
		notifiers = append(notifiers, report.NewMetricsNotifier(cfg.PushgatewayURL, cfg.Stage))
	}

	return report.NewMultiNotifier(logger.Log.With(zap.String("component", "report")), notifiers...)
}

// reportSetupFailure attempts to deliver a failure report for a run that
// never started.
func reportSetupFailure(ctx context.Context, notifier report.Notifier, trigger string, err error) {
	if notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if nerr := notifier.Notify(notifyCtx, failedStats(trigger, fmt.Errorf("setup: %w", err))); nerr != nil {
		logger.Warn("Failed to deliver setup failure report", zap.Error(nerr))
	}
}
