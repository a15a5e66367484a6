package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpClient "github.com/cyphera/billing-reconciler/internal/client/http"
	"github.com/cyphera/billing-reconciler/internal/reconcile"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sampleStats(success bool) reconcile.RunStats {
	started := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	stats := reconcile.RunStats{
		RunID:      "run-123",
		Trigger:    "scheduled",
		StartedAt:  started,
		FinishedAt: started.Add(90 * time.Second),
		Success:    success,
		LocalPass: &reconcile.LocalPassStats{
			Total: 10, Updated: 2, Cancelled: 1, InvalidCustomerReset: 1, NoChange: 5, Errored: 1,
		},
		ProviderPass: &reconcile.ProviderPassStats{
			TotalScanned: 40, Candidates: 38, Created: 3, Updated: 1, Skipped: 34, Unresolved: 2, Duplicates: 1,
		},
	}
	if !success {
		stats.Errors = []string{"provider pass: stripe unavailable"}
	}
	return stats
}

type recordingNotifier struct {
	name  string
	err   error
	calls int
}

func (r *recordingNotifier) Name() string { return r.name }

func (r *recordingNotifier) Notify(ctx context.Context, stats reconcile.RunStats) error {
	r.calls++
	return r.err
}

func TestMultiNotifier_BestEffort(t *testing.T) {
	failing := &recordingNotifier{name: "broken", err: errors.New("timeout")}
	ok := &recordingNotifier{name: "ok"}

	multi := NewMultiNotifier(zap.NewNop(), failing, nil, ok)
	assert.Equal(t, 2, multi.Len())

	err := multi.Notify(context.Background(), sampleStats(true))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: timeout")
	assert.Equal(t, 1, failing.calls)
	assert.Equal(t, 1, ok.calls)
}

func TestMultiNotifier_Empty(t *testing.T) {
	assert.NoError(t, NewMultiNotifier(zap.NewNop()).Notify(context.Background(), sampleStats(true)))
}

func TestSummary(t *testing.T) {
	text := Summary(sampleStats(true))
	assert.True(t, strings.HasPrefix(text, "Billing reconciliation succeeded (scheduled)"))
	assert.Contains(t, text, "Run run-123 took 1m30s")
	assert.Contains(t, text, "Local pass: 10 checked, 2 updated, 1 cancelled, 1 ghost customers reset, 5 unchanged, 1 errored, 0 skipped")
	assert.Contains(t, text, "Provider pass: 40 scanned, 38 candidates, 3 created, 1 updated, 34 skipped, 2 unresolved, 1 duplicates")

	failed := sampleStats(false)
	failed.DryRun = true
	failed.ProviderPass = nil
	text = Summary(failed)
	assert.True(t, strings.HasPrefix(text, "Billing reconciliation FAILED (scheduled) [dry run]"))
	assert.NotContains(t, text, "Provider pass:")
	assert.Contains(t, text, "Error: provider pass: stripe unavailable")
}

func TestTitle_BudgetExceeded(t *testing.T) {
	stats := sampleStats(true)
	stats.BudgetExceeded = true
	assert.Equal(t, "Billing reconciliation stopped at budget (scheduled)", Title(stats))
}

func TestWebhookNotifier(t *testing.T) {
	var payload struct {
		Text  string             `json:"text"`
		Stats reconcile.RunStats `json:"stats"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, httpClient.NewHTTPClient(httpClient.WithRetryConfig(nil)))
	require.NoError(t, notifier.Notify(context.Background(), sampleStats(true)))

	assert.Contains(t, payload.Text, "Billing reconciliation succeeded")
	assert.Equal(t, "run-123", payload.Stats.RunID)
	require.NotNil(t, payload.Stats.ProviderPass)
	assert.Equal(t, 3, payload.Stats.ProviderPass.Created)
}

func TestWebhookNotifier_Error(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	notifier := NewWebhookNotifier(server.URL, httpClient.NewHTTPClient(httpClient.WithRetryConfig(nil)))
	assert.Error(t, notifier.Notify(context.Background(), sampleStats(true)))
}

type fakeEmailSender struct {
	sent []*resend.SendEmailRequest
	err  error
}

func (f *fakeEmailSender) SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, params)
	return &resend.SendEmailResponse{Id: "email_1"}, nil
}

func TestEmailNotifier(t *testing.T) {
	cfg := EmailConfig{FromEmail: "billing@lunary.app", FromName: "Billing", To: []string{"ops@lunary.app"}}

	t.Run("failure is mailed", func(t *testing.T) {
		sender := &fakeEmailSender{}
		require.NoError(t, newEmailNotifier(sender, cfg).Notify(context.Background(), sampleStats(false)))
		require.Len(t, sender.sent, 1)
		assert.Equal(t, "Billing <billing@lunary.app>", sender.sent[0].From)
		assert.Equal(t, []string{"ops@lunary.app"}, sender.sent[0].To)
		assert.Contains(t, sender.sent[0].Subject, "FAILED")
		assert.Equal(t, "run-123", sender.sent[0].Headers["X-Entity-Ref-ID"])
	})

	t.Run("success is skipped by default", func(t *testing.T) {
		sender := &fakeEmailSender{}
		require.NoError(t, newEmailNotifier(sender, cfg).Notify(context.Background(), sampleStats(true)))
		assert.Empty(t, sender.sent)
	})

	t.Run("success mailed when enabled", func(t *testing.T) {
		sender := &fakeEmailSender{}
		withSuccess := cfg
		withSuccess.OnSuccess = true
		require.NoError(t, newEmailNotifier(sender, withSuccess).Notify(context.Background(), sampleStats(true)))
		assert.Len(t, sender.sent, 1)
	})

	t.Run("send error", func(t *testing.T) {
		sender := &fakeEmailSender{err: errors.New("rate limited")}
		err := newEmailNotifier(sender, cfg).Notify(context.Background(), sampleStats(false))
		assert.ErrorContains(t, err, "rate limited")
	})

	t.Run("no recipients", func(t *testing.T) {
		sender := &fakeEmailSender{}
		require.NoError(t, newEmailNotifier(sender, EmailConfig{}).Notify(context.Background(), sampleStats(false)))
		assert.Empty(t, sender.sent)
	})
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSQSNotifier(t *testing.T) {
	client := &fakeSQS{}
	notifier := NewSQSNotifier(client, "https://sqs.us-east-1.amazonaws.com/123/reconcile-reports")
	require.NoError(t, notifier.Notify(context.Background(), sampleStats(false)))

	require.NotNil(t, client.input)
	assert.Equal(t, "https://sqs.us-east-1.amazonaws.com/123/reconcile-reports", aws.ToString(client.input.QueueUrl))
	assert.Equal(t, "run-123", aws.ToString(client.input.MessageAttributes["RunID"].StringValue))
	assert.Equal(t, "false", aws.ToString(client.input.MessageAttributes["Success"].StringValue))

	var decoded reconcile.RunStats
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &decoded))
	assert.Equal(t, "scheduled", decoded.Trigger)
	assert.Equal(t, []string{"provider pass: stripe unavailable"}, decoded.Errors)

	client.err = errors.New("access denied")
	assert.ErrorContains(t, notifier.Notify(context.Background(), sampleStats(true)), "access denied")
}

func TestMetricsNotifier(t *testing.T) {
	var path, body string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, NewMetricsNotifier(server.URL, "dev").Notify(context.Background(), sampleStats(true)))
	assert.Equal(t, "/metrics/job/billing-reconciler/stage/dev", path)
	assert.NotEmpty(t, body)
}

func TestRunMetrics_Observe(t *testing.T) {
	m := newRunMetrics()
	m.observe(sampleStats(true))

	families, err := m.registry.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, f := range families {
		for _, metric := range f.GetMetric() {
			name := f.GetName()
			for _, l := range metric.GetLabel() {
				name += "/" + l.GetValue()
			}
			values[name] = metric.GetGauge().GetValue()
		}
	}

	assert.Equal(t, 1.0, values["billing_reconcile_last_run_success"])
	assert.Equal(t, 90.0, values["billing_reconcile_last_run_duration_seconds"])
	assert.Equal(t, 2.0, values["billing_reconcile_local_pass_rows/updated"])
	assert.Equal(t, 3.0, values["billing_reconcile_provider_pass_subscriptions/created"])
}
