package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/logger"
	"github.com/cyphera/billing-reconciler/internal/reconcile"
	"github.com/cyphera/billing-reconciler/internal/report"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

const notifyTimeout = 30 * time.Second

// errRunInProgress is returned when another run holds the run lock.
var errRunInProgress = errors.New("another reconciliation run is in progress")

// runner executes one reconciliation run.
type runner interface {
	Run(ctx context.Context, opts reconcile.RunOptions) reconcile.RunStats
}

// runLock guards a run against overlapping invocations.
type runLock interface {
	Acquire(ctx context.Context) (release func(), acquired bool, err error)
}

// Application holds all dependencies for the Lambda handler
type Application struct {
	engine       runner
	notifier     report.Notifier
	lock         runLock
	skipLocal    bool
	skipProvider bool
	cleanup      func()
}

// HandleRequest is the Lambda handler. EventBridge schedule events run as
// scheduled; any other invocation runs as manual.
func (app *Application) HandleRequest(ctx context.Context, event events.CloudWatchEvent) (reconcile.RunStats, error) {
	trigger := constants.TriggerManual
	if event.Source == constants.ScheduledEventSource {
		trigger = constants.TriggerScheduled
	}
	logger.Info("Entering HandleRequest for billing reconciliation",
		zap.String("trigger", trigger),
		zap.String("event_id", event.ID))

	stats, err := app.Run(ctx, trigger)
	// A skipped overlapping invocation must not be retried by the async invoker.
	if errors.Is(err, errRunInProgress) {
		return stats, nil
	}
	return stats, err
}

// LocalHandleRequest runs once outside Lambda.
func (app *Application) LocalHandleRequest(ctx context.Context) (reconcile.RunStats, error) {
	return app.Run(ctx, constants.TriggerManual)
}

// Run executes one reconciliation run under the run lock and delivers the
// report. Report delivery never changes the returned error.
func (app *Application) Run(ctx context.Context, trigger string) (reconcile.RunStats, error) {
	if app.lock != nil {
		release, acquired, err := app.lock.Acquire(ctx)
		if err != nil {
			stats := failedStats(trigger, fmt.Errorf("failed to acquire run lock: %w", err))
			app.notify(ctx, stats)
			return stats, err
		}
		if !acquired {
			logger.Warn("Skipping reconciliation, run lock held elsewhere", zap.String("trigger", trigger))
			return reconcile.RunStats{Trigger: trigger}, errRunInProgress
		}
		defer release()
	}

	stats := app.engine.Run(ctx, reconcile.RunOptions{
		Trigger:      trigger,
		SkipLocal:    app.skipLocal,
		SkipProvider: app.skipProvider,
	})
	app.notify(ctx, stats)

	if !stats.Success {
		return stats, fmt.Errorf("reconciliation run %s failed: %v", stats.RunID, stats.Errors)
	}
	return stats, nil
}

// Close releases pooled resources.
func (app *Application) Close() {
	if app.cleanup != nil {
		app.cleanup()
	}
}

func (app *Application) notify(ctx context.Context, stats reconcile.RunStats) {
	if app.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := app.notifier.Notify(notifyCtx, stats); err != nil {
		logger.Warn("Run report delivery incomplete", zap.Error(err))
	}
}

// failedStats describes a run that failed before the engine started.
func failedStats(trigger string, err error) reconcile.RunStats {
	now := time.Now()
	return reconcile.RunStats{
		Trigger:    trigger,
		StartedAt:  now,
		FinishedAt: now,
		Success:    false,
		Errors:     []string{err.Error()},
	}
}
