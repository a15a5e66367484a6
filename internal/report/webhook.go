package report

import (
	"context"

	httpClient "github.com/cyphera/billing-reconciler/internal/client/http"
	"github.com/cyphera/billing-reconciler/internal/reconcile"
)

// webhookPayload carries a chat-friendly text line alongside the structured stats.
type webhookPayload struct {
	Text  string             `json:"text"`
	Stats reconcile.RunStats `json:"stats"`
}

// WebhookNotifier posts the run report to a generic webhook URL.
type WebhookNotifier struct {
	url    string
	client *httpClient.HTTPClient
}

// NewWebhookNotifier creates a WebhookNotifier.
func NewWebhookNotifier(url string, client *httpClient.HTTPClient) *WebhookNotifier {
	if client == nil {
		client = httpClient.NewHTTPClient()
	}
	return &WebhookNotifier{url: url, client: client}
}

// Name implements Notifier.
func (w *WebhookNotifier) Name() string {
	return "webhook"
}

// Notify implements Notifier.
func (w *WebhookNotifier) Notify(ctx context.Context, stats reconcile.RunStats) error {
	return w.client.PostJSON(ctx, w.url, webhookPayload{
		Text:  Summary(stats),
		Stats: stats,
	})
}
