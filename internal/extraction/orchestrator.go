// Package extraction runs the AI pass over a brief: claim the run, call the
// model with retries, normalize the payload, score, and persist the outcome.
package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/collabops/brief-cli/internal/clarify"
	"github.com/collabops/brief-cli/internal/model"
	"github.com/collabops/brief-cli/internal/normalize"
	"github.com/collabops/brief-cli/internal/resilience"
	"github.com/collabops/brief-cli/internal/scorer"
	"github.com/collabops/brief-cli/internal/store"
	"github.com/collabops/brief-cli/pkg/anthropic"
)

// ErrExtractionRunning is returned when the start gate was not claimed:
// another run is in flight, or the extraction already completed.
var ErrExtractionRunning = eris.New("extraction: run not claimed")

// Config holds model and pacing parameters for extraction runs.
type Config struct {
	Model          string        `yaml:"model" mapstructure:"model"`
	MaxTokens      int64         `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64       `yaml:"temperature" mapstructure:"temperature"`
	AttemptTimeout time.Duration `yaml:"attempt_timeout" mapstructure:"attempt_timeout"`

	// RequestsPerMinute paces calls to the AI API across concurrent runs.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// DefaultConfig returns the extraction parameters used in production.
func DefaultConfig() Config {
	return Config{
		Model:             "claude-sonnet-4-5-20250929",
		MaxTokens:         2000,
		Temperature:       0.3,
		AttemptTimeout:    60 * time.Second,
		RequestsPerMinute: 30,
	}
}

// Orchestrator owns a full extraction run for one brief.
type Orchestrator struct {
	store   store.Store
	ai      anthropic.Client
	cfg     Config
	retry   resilience.RetryConfig
	limiter *rate.Limiter
}

// NewOrchestrator wires an orchestrator with a shared rate limiter.
func NewOrchestrator(st store.Store, ai anthropic.Client, cfg Config) *Orchestrator {
	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 30
	}
	return &Orchestrator{
		store:   st,
		ai:      ai,
		cfg:     cfg,
		retry:   resilience.DefaultRetryConfig(),
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1),
	}
}

type attemptResult struct {
	raw   map[string]any
	model string
	usage anthropic.TokenUsage
}

// Run executes the extraction for one brief. The persisted extraction status
// is the sole entry gate: the run proceeds only if this call atomically moves
// it from pending or failed to processing, otherwise ErrExtractionRunning is
// returned and nothing happens.
//
// The model is called up to three times with 2s and 4s pauses in between.
// Any attempt failure (API error, timeout, unparseable response) counts the
// same way. Exhaustion persists a failed status with the retry count and last
// error; success persists the normalized record, the derived brief status,
// and the suggested clarification questions in a single write.
func (o *Orchestrator) Run(ctx context.Context, creatorID, briefID string) error {
	claimed, err := o.store.TryStartExtraction(ctx, creatorID, briefID)
	if err != nil {
		return eris.Wrap(err, "extraction: claim run")
	}
	if !claimed {
		return ErrExtractionRunning
	}

	b, err := o.store.GetBrief(ctx, creatorID, briefID)
	if err != nil {
		return eris.Wrap(err, "extraction: load brief")
	}
	b.AIExtraction.Status = model.ExtractionProcessing
	if err := o.store.SaveBrief(ctx, b); err != nil {
		return eris.Wrap(err, "extraction: persist processing state")
	}

	start := time.Now()
	retryCount := 0

	rc := o.retry
	rc.ShouldRetry = func(error) bool { return true }
	rc.OnRetry = func(attempt int, attemptErr error) {
		retryCount = attempt
		zap.L().Warn("extraction attempt failed, retrying",
			zap.String("brief_id", briefID),
			zap.Int("retry", attempt),
			zap.Error(attemptErr),
		)
	}

	result, err := resilience.DoVal(ctx, rc, func(ctx context.Context) (*attemptResult, error) {
		return o.attempt(ctx, b.OriginalContent.Text)
	})

	elapsed := time.Since(start)
	if err != nil {
		b.AIExtraction.Status = model.ExtractionFailed
		b.AIExtraction.ProcessingMetadata.ModelUsed = o.cfg.Model
		b.AIExtraction.ProcessingMetadata.ProcessingTimeMS = elapsed.Milliseconds()
		b.AIExtraction.ProcessingMetadata.ExtractionVersion = model.ExtractionVersion
		b.AIExtraction.ProcessingMetadata.RetryCount = retryCount
		b.AIExtraction.ProcessingMetadata.LastError = err.Error()
		if saveErr := o.store.SaveBrief(ctx, b); saveErr != nil {
			zap.L().Error("failed to persist extraction failure",
				zap.String("brief_id", briefID),
				zap.Error(saveErr),
			)
		}
		return eris.Wrapf(err, "extraction: brief %s", briefID)
	}

	extracted := normalize.Extraction(result.raw)
	extracted.ProcessingMetadata.ModelUsed = result.model
	extracted.ProcessingMetadata.TokensUsed = int(result.usage.Total())
	extracted.ProcessingMetadata.ProcessingTimeMS = elapsed.Milliseconds()
	extracted.ProcessingMetadata.ExtractionVersion = model.ExtractionVersion
	extracted.ProcessingMetadata.RetryCount = retryCount

	b.AIExtraction = extracted
	b.Status = scorer.DeriveStatus(&b.AIExtraction)
	b.Clarifications.SuggestedQuestions = clarify.BuildQuestions(extracted.MissingInfo)
	now := time.Now().UTC()
	b.LastProcessedAt = &now

	if err := o.store.SaveBrief(ctx, b); err != nil {
		return eris.Wrap(err, "extraction: persist result")
	}

	result.usage.LogCost(result.model, "extraction")
	zap.L().Info("extraction completed",
		zap.String("creator_id", creatorID),
		zap.String("brief_id", briefID),
		zap.String("status", string(b.Status)),
		zap.Int("retry_count", retryCount),
		zap.Int("missing_info", len(extracted.MissingInfo)),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

func (o *Orchestrator) attempt(ctx context.Context, briefText string) (*attemptResult, error) {
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extraction: rate limit wait")
	}

	attemptCtx := ctx
	if o.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, o.cfg.AttemptTimeout)
		defer cancel()
	}

	temp := o.cfg.Temperature
	resp, err := o.ai.CreateMessage(attemptCtx, anthropic.MessageRequest{
		Model:       o.cfg.Model,
		MaxTokens:   o.cfg.MaxTokens,
		System:      systemPrompt,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(userPromptTemplate, briefText)},
		},
	})
	if err != nil {
		return nil, err
	}

	raw, err := parseExtractionJSON(resp.Text())
	if err != nil {
		return nil, err
	}

	return &attemptResult{
		raw:   raw,
		model: resp.Model,
		usage: resp.Usage,
	}, nil
}

// parseExtractionJSON strips markdown fencing and surrounding prose, then
// unmarshals the object. A payload that does not parse is a retryable
// failure; the attempt loop handles it the same as an API error.
func parseExtractionJSON(text string) (map[string]any, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, eris.New("extraction: response contains no JSON object")
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &raw); err != nil {
		return nil, eris.Wrap(err, "extraction: parse response JSON")
	}
	return raw, nil
}
