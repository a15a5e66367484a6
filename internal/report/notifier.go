package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/cyphera/billing-reconciler/internal/reconcile"

	"go.uber.org/zap"
)

// Notifier delivers a finished run's stats to an operational channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, stats reconcile.RunStats) error
}

// MultiNotifier fans a report out to every configured sink. A failing sink
// is logged and never prevents delivery to the others.
type MultiNotifier struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMultiNotifier creates a MultiNotifier, dropping nil entries.
func NewMultiNotifier(logger *zap.Logger, notifiers ...Notifier) *MultiNotifier {
	m := &MultiNotifier{logger: logger}
	for _, n := range notifiers {
		if n != nil {
			m.notifiers = append(m.notifiers, n)
		}
	}
	return m
}

// Name implements Notifier.
func (m *MultiNotifier) Name() string {
	return "multi"
}

// Len returns the number of sinks.
func (m *MultiNotifier) Len() int {
	return len(m.notifiers)
}

// Notify delivers stats to every sink and returns the joined errors.
// Callers treat the error as informational only.
func (m *MultiNotifier) Notify(ctx context.Context, stats reconcile.RunStats) error {
	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, stats); err != nil {
			m.logger.Warn("Failed to deliver run report",
				zap.String("sink", n.Name()),
				zap.String("run_id", stats.RunID),
				zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
			continue
		}
		m.logger.Debug("Delivered run report", zap.String("sink", n.Name()), zap.String("run_id", stats.RunID))
	}
	return errors.Join(errs...)
}
