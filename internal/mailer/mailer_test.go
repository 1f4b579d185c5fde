package mailer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func testEmail() OutboundEmail {
	return OutboundEmail{
		To:      "priya@glowco.example",
		BriefID: "BRF-20260828-abcd1234",
		Subject: "Collaboration Clarifications - GlowCo",
		Body:    "Hi GlowCo team,",
		SentAt:  time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

func newTestMailer(url string) *WebhookMailer {
	m := NewWebhook(url)
	m.retry.InitialBackoff = time.Millisecond
	return m
}

func TestWebhookMailer_Send(t *testing.T) {
	var got OutboundEmail
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestMailer(srv.URL).Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, "priya@glowco.example", got.To)
	assert.Equal(t, "Collaboration Clarifications - GlowCo", got.Subject)
}

func TestWebhookMailer_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestMailer(srv.URL).Send(context.Background(), testEmail())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestWebhookMailer_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestMailer(srv.URL).Send(context.Background(), testEmail())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load())
}

func TestWebhookMailer_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := newTestMailer(srv.URL).Send(context.Background(), testEmail())
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestLogMailer_Send(t *testing.T) {
	assert.NoError(t, LogMailer{}.Send(context.Background(), testEmail()))
}
