package report

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/cyphera/billing-reconciler/internal/reconcile"

	"github.com/resend/resend-go/v2"
)

// emailSender is the subset of the Resend client used to send mail.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailConfig configures an EmailNotifier.
type EmailConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
	To        []string
	// OnSuccess also mails reports of successful runs; failures are always mailed.
	OnSuccess bool
}

// EmailNotifier mails run reports through Resend.
type EmailNotifier struct {
	emails    emailSender
	from      string
	to        []string
	onSuccess bool
}

// NewEmailNotifier creates an EmailNotifier.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	client := resend.NewClient(cfg.APIKey)
	return newEmailNotifier(client.Emails, cfg)
}

func newEmailNotifier(emails emailSender, cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{
		emails:    emails,
		from:      fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		to:        cfg.To,
		onSuccess: cfg.OnSuccess,
	}
}

// Name implements Notifier.
func (e *EmailNotifier) Name() string {
	return "email"
}

// Notify implements Notifier. Successful runs are skipped unless OnSuccess is set.
func (e *EmailNotifier) Notify(ctx context.Context, stats reconcile.RunStats) error {
	if len(e.to) == 0 {
		return nil
	}
	if stats.Success && !stats.BudgetExceeded && !e.onSuccess {
		return nil
	}

	text := Summary(stats)
	category := "success"
	if !stats.Success {
		category = "failure"
	}

	_, err := e.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.from,
		To:      e.to,
		Subject: Title(stats),
		Text:    text,
		Html:    "<pre>" + html.EscapeString(text) + "</pre>",
		Headers: map[string]string{
			"X-Entity-Ref-ID": stats.RunID,
		},
		Tags: []resend.Tag{
			{Name: "category", Value: "billing_reconciliation"},
			{Name: "outcome", Value: category},
			{Name: "trigger", Value: strings.ReplaceAll(stats.Trigger, " ", "_")},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}
