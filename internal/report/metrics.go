package report

import (
	"context"
	"fmt"

	"github.com/cyphera/billing-reconciler/internal/constants"
	"github.com/cyphera/billing-reconciler/internal/reconcile"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// runMetrics holds the gauges describing the most recent run.
type runMetrics struct {
	registry       *prometheus.Registry
	lastRun        prometheus.Gauge
	lastSuccess    prometheus.Gauge
	duration       prometheus.Gauge
	budgetExceeded prometheus.Gauge
	localPass      *prometheus.GaugeVec
	providerPass   *prometheus.GaugeVec
}

func newRunMetrics() *runMetrics {
	m := &runMetrics{
		registry: prometheus.NewRegistry(),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "billing",
			Subsystem: "reconcile",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last reconciliation run finished",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "billing",
			Subsystem: "reconcile",
			Name:      "last_run_success",
			Help:      "1 if the last reconciliation run succeeded, 0 otherwise",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "billing",
			Subsystem: "reconcile",
			Name:      "last_run_duration_seconds",
			Help:      "Wall-clock duration of the last reconciliation run",
		}),
		budgetExceeded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "billing",
			Subsystem: "reconcile",
			Name:      "last_run_budget_exceeded",
			Help:      "1 if the last reconciliation run stopped at its time budget",
		}),
		localPass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "billing",
			Subsystem: "reconcile",
			Name:      "local_pass_rows",
			Help:      "Local pass row outcomes in the last run",
		}, []string{"outcome"}),
		providerPass: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "billing",
			Subsystem: "reconcile",
			Name:      "provider_pass_subscriptions",
			Help:      "Provider pass outcomes in the last run",
		}, []string{"outcome"}),
	}
	m.registry.MustRegister(m.lastRun, m.lastSuccess, m.duration, m.budgetExceeded, m.localPass, m.providerPass)
	return m
}

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func (m *runMetrics) observe(stats reconcile.RunStats) {
	m.lastRun.Set(float64(stats.FinishedAt.Unix()))
	m.lastSuccess.Set(boolGauge(stats.Success))
	m.duration.Set(stats.Duration().Seconds())
	m.budgetExceeded.Set(boolGauge(stats.BudgetExceeded))

	if lp := stats.LocalPass; lp != nil {
		m.localPass.WithLabelValues("total").Set(float64(lp.Total))
		m.localPass.WithLabelValues("updated").Set(float64(lp.Updated))
		m.localPass.WithLabelValues("cancelled").Set(float64(lp.Cancelled))
		m.localPass.WithLabelValues("invalid_customer_reset").Set(float64(lp.InvalidCustomerReset))
		m.localPass.WithLabelValues("no_change").Set(float64(lp.NoChange))
		m.localPass.WithLabelValues("errored").Set(float64(lp.Errored))
		m.localPass.WithLabelValues("skipped").Set(float64(lp.Skipped))
	}
	if pp := stats.ProviderPass; pp != nil {
		m.providerPass.WithLabelValues("total_scanned").Set(float64(pp.TotalScanned))
		m.providerPass.WithLabelValues("candidates").Set(float64(pp.Candidates))
		m.providerPass.WithLabelValues("created").Set(float64(pp.Created))
		m.providerPass.WithLabelValues("updated").Set(float64(pp.Updated))
		m.providerPass.WithLabelValues("skipped").Set(float64(pp.Skipped))
		m.providerPass.WithLabelValues("unresolved").Set(float64(pp.Unresolved))
		m.providerPass.WithLabelValues("duplicates").Set(float64(pp.Duplicates))
	}
}

// MetricsNotifier pushes run gauges to a Prometheus Pushgateway. A batch job
// lives too briefly to be scraped.
type MetricsNotifier struct {
	url   string
	stage string
}

// NewMetricsNotifier creates a MetricsNotifier.
func NewMetricsNotifier(pushgatewayURL, stage string) *MetricsNotifier {
	return &MetricsNotifier{url: pushgatewayURL, stage: stage}
}

// Name implements Notifier.
func (m *MetricsNotifier) Name() string {
	return "metrics"
}

// Notify implements Notifier.
func (m *MetricsNotifier) Notify(ctx context.Context, stats reconcile.RunStats) error {
	metrics := newRunMetrics()
	metrics.observe(stats)

	pusher := push.New(m.url, constants.ServiceName).Gatherer(metrics.registry)
	if m.stage != "" {
		pusher = pusher.Grouping("stage", m.stage)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
