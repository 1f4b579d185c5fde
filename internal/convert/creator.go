package convert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/resilience"
)

// WebhookCreator posts draft deals to the deals service and returns the id
// it assigns.
type WebhookCreator struct {
	url    string
	client *http.Client
	retry  resilience.RetryConfig
}

// NewWebhookCreator creates a deals-service client.
func NewWebhookCreator(url string) *WebhookCreator {
	rc := resilience.DefaultRetryConfig()
	rc.InitialBackoff = time.Second
	rc.OnRetry = resilience.RetryLogger("deals", "create")
	return &WebhookCreator{
		url:    url,
		client: &http.Client{Timeout: 15 * time.Second},
		retry:  rc,
	}
}

// CreateDeal posts the draft deal, retrying transient failures.
func (c *WebhookCreator) CreateDeal(ctx context.Context, deal *model.DraftDeal) (string, error) {
	payload, err := json.Marshal(deal)
	if err != nil {
		return "", eris.Wrap(err, "convert: marshal deal")
	}

	return resilience.DoVal(ctx, c.retry, func(ctx context.Context) (string, error) {
		return c.post(ctx, payload)
	})
}

func (c *WebhookCreator) post(ctx context.Context, payload []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", eris.Wrap(err, "convert: create request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", resilience.NewTransientError(eris.Wrap(err, "convert: deals request"), 0)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		err := eris.Errorf("convert: deals service returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return "", resilience.NewTransientError(err, resp.StatusCode)
		}
		return "", err
	}

	var body struct {
		DealID string `json:"deal_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", eris.Wrap(err, "convert: decode deals response")
	}
	if body.DealID == "" {
		return "", eris.New("convert: deals service returned no deal_id")
	}
	return body.DealID, nil
}

// LocalCreator mints deal ids locally. Used by the CLI when no deals service
// is configured; the draft deal lives on the brief document only.
type LocalCreator struct{}

// CreateDeal assigns a local deal id and logs the draft.
func (LocalCreator) CreateDeal(_ context.Context, deal *model.DraftDeal) (string, error) {
	id := fmt.Sprintf("DEAL-%s", uuid.New().String()[:8])
	zap.L().Info("deal created locally",
		zap.String("deal_id", id),
		zap.String("brand", deal.BrandName),
		zap.Float64("amount", deal.Amount),
	)
	return id, nil
}
