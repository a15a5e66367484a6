package reconcile

import (
	"context"
	"errors"
	"time"

	ps "github.com/cyphera/billing-reconciler/internal/client/payment_sync"
	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/db"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultRunBudget = 10 * time.Minute

// EngineConfig holds everything needed to build an Engine.
type EngineConfig struct {
	Queries            db.Querier
	Provider           ps.Provider
	Logger             *zap.Logger
	PlanPriceIDs       map[string]string
	ExcludedIdentities []string
	DryRun             bool
	RunBudget          time.Duration
	PageSize           int
	PassAConcurrency   int
	Now                func() time.Time
}

// RunOptions selects what a single run does.
type RunOptions struct {
	Trigger      string
	SkipLocal    bool
	SkipProvider bool
}

// Engine runs the local-first pass followed by the provider-first pass
// under one wall-clock budget.
type Engine struct {
	localPass    *LocalPass
	providerPass *ProviderPass
	logger       *zap.Logger
	budget       time.Duration
	dryRun       bool
	now          func() time.Time
	newRunID     func() string
}

// NewEngine wires the passes and their shared collaborators.
func NewEngine(cfg EngineConfig) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	budget := cfg.RunBudget
	if budget <= 0 {
		budget = defaultRunBudget
	}

	plans := NewPlanResolver(cfg.PlanPriceIDs)
	exclusions := NewExclusionSet(cfg.ExcludedIdentities)
	writer := NewWriter(cfg.Queries, logger, cfg.DryRun)

	return &Engine{
		localPass: NewLocalPass(LocalPassConfig{
			Queries:     cfg.Queries,
			Provider:    cfg.Provider,
			Writer:      writer,
			Plans:       plans,
			Exclusions:  exclusions,
			Logger:      logger.With(zap.String("pass", "local")),
			PageSize:    cfg.PageSize,
			Concurrency: cfg.PassAConcurrency,
			Now:         now,
		}),
		providerPass: NewProviderPass(ProviderPassConfig{
			Queries:    cfg.Queries,
			Provider:   cfg.Provider,
			Resolver:   NewIdentityResolver(cfg.Queries, logger),
			Writer:     writer,
			Plans:      plans,
			Exclusions: exclusions,
			Logger:     logger.With(zap.String("pass", "provider")),
			PageSize:   cfg.PageSize,
			Now:        now,
		}),
		logger:   logger,
		budget:   budget,
		dryRun:   cfg.DryRun,
		now:      now,
		newRunID: func() string { return uuid.New().String() },
	}
}

// Run executes one reconciliation run. Per-item failures are counted in the
// pass stats and never fail the run. Running out of budget stops the run
// cleanly with partial stats and BudgetExceeded set; it is not a failure.
// Success is false only when a pass could not read its source of work.
func (e *Engine) Run(ctx context.Context, opts RunOptions) RunStats {
	trigger := opts.Trigger
	if trigger == "" {
		trigger = constants.TriggerManual
	}

	stats := RunStats{
		RunID:     e.newRunID(),
		Trigger:   trigger,
		StartedAt: e.now(),
		DryRun:    e.dryRun,
		Success:   true,
	}
	log := e.logger.With(zap.String("run_id", stats.RunID), zap.String("trigger", trigger))
	log.Info("Starting reconciliation run",
		zap.Bool("dry_run", e.dryRun),
		zap.Duration("budget", e.budget))

	runCtx, cancel := context.WithTimeout(ctx, e.budget)
	defer cancel()

	if !opts.SkipLocal {
		local, err := e.localPass.Run(runCtx)
		stats.LocalPass = &local
		if err != nil {
			stats.Success = false
			stats.Errors = append(stats.Errors, "local pass: "+err.Error())
		}
	}

	if !opts.SkipProvider {
		if runCtx.Err() != nil {
			log.Warn("Skipping provider pass, run budget exhausted")
		} else {
			provider, err := e.providerPass.Run(runCtx)
			stats.ProviderPass = &provider
			if err != nil {
				stats.Success = false
				stats.Errors = append(stats.Errors, "provider pass: "+err.Error())
			}
		}
	}

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		stats.BudgetExceeded = true
	}
	if err := ctx.Err(); err != nil {
		stats.Success = false
		stats.Errors = append(stats.Errors, "run interrupted: "+err.Error())
	}
	stats.FinishedAt = e.now()

	fields := []zap.Field{
		zap.Bool("success", stats.Success),
		zap.Bool("budget_exceeded", stats.BudgetExceeded),
		zap.Duration("duration", stats.Duration()),
	}
	if stats.Success {
		log.Info("Reconciliation run finished", fields...)
	} else {
		log.Error("Reconciliation run failed", append(fields, zap.Strings("errors", stats.Errors))...)
	}
	return stats
}
