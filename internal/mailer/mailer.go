// Package mailer delivers clarification emails. Delivery goes through an
// email-service webhook; deployments without one fall back to a logging
// sender so the pipeline still completes.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/resilience"
)

// OutboundEmail is a rendered clarification email addressed to the brand.
type OutboundEmail struct {
	To       string                   `json:"to"`
	BriefID  string                   `json:"brief_id"`
	Subject  string                   `json:"subject"`
	Body     string                   `json:"body"`
	SentAt   time.Time                `json:"sent_at"`
	Rendered model.ClarificationEmail `json:"-"`
}

// Mailer sends clarification emails.
type Mailer interface {
	Send(ctx context.Context, email OutboundEmail) error
}

// WebhookMailer posts emails as JSON to an email-service webhook.
type WebhookMailer struct {
	url    string
	client *http.Client
	retry  resilience.RetryConfig
}

// NewWebhook creates a webhook mailer.
func NewWebhook(url string) *WebhookMailer {
	rc := resilience.DefaultRetryConfig()
	rc.InitialBackoff = time.Second
	rc.OnRetry = resilience.RetryLogger("mailer", "send")
	return &WebhookMailer{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
		retry:  rc,
	}
}

// Send posts the email payload, retrying transient delivery failures.
func (m *WebhookMailer) Send(ctx context.Context, email OutboundEmail) error {
	payload, err := json.Marshal(email)
	if err != nil {
		return eris.Wrap(err, "mailer: marshal email")
	}

	_, err = resilience.DoVal(ctx, m.retry, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, m.post(ctx, payload)
	})
	if err != nil {
		return err
	}

	zap.L().Info("clarification email sent",
		zap.String("brief_id", email.BriefID),
		zap.String("to", email.To),
	)
	return nil
}

func (m *WebhookMailer) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(payload))
	if err != nil {
		return eris.Wrap(err, "mailer: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return resilience.NewTransientError(eris.Wrap(err, "mailer: webhook request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("mailer: webhook returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return resilience.NewTransientError(err, resp.StatusCode)
		}
		return err
	}
	return nil
}

// LogMailer logs emails instead of delivering them.
type LogMailer struct{}

// Send logs the email subject and recipient.
func (LogMailer) Send(_ context.Context, email OutboundEmail) error {
	zap.L().Info("clarification email (log only)",
		zap.String("brief_id", email.BriefID),
		zap.String("to", email.To),
		zap.String("subject", email.Subject),
	)
	return nil
}
