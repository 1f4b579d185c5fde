package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/collabops/brief-cli/internal/briefs"
	"github.com/collabops/brief-cli/internal/config"
	"github.com/collabops/brief-cli/internal/convert"
	"github.com/collabops/brief-cli/internal/extraction"
	"github.com/collabops/brief-cli/internal/mailer"
	"github.com/collabops/brief-cli/internal/store"
	"github.com/collabops/brief-cli/internal/subscription"
	"github.com/collabops/brief-cli/internal/textextract"
	anthropicpkg "github.com/collabops/brief-cli/pkg/anthropic"
)

// appEnv holds the initialized store, services, and background runner shared
// by the commands.
type appEnv struct {
	Store     store.Store
	Service   *briefs.Service
	Runner    *extraction.Runner
	Converter *convert.Converter
}

// Close stops the runner (waiting for in-flight extractions) and closes the
// store.
func (e *appEnv) Close() {
	if e.Runner != nil {
		e.Runner.Shutdown()
	}
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initEnv sets up the store, AI client, and services. Callers should defer
// env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	orc := extraction.NewOrchestrator(st, anthropicClient, cfg.Extraction)
	runner := extraction.NewRunner(orc, 256)

	var m mailer.Mailer = mailer.LogMailer{}
	if cfg.Mailer.WebhookURL != "" {
		m = mailer.NewWebhook(cfg.Mailer.WebhookURL)
	}

	var creator convert.DealCreator = convert.LocalCreator{}
	if cfg.Deals.WebhookURL != "" {
		creator = convert.NewWebhookCreator(cfg.Deals.WebhookURL)
	}

	gate := subscription.NewGate(st)
	extractor := textextract.New("")
	svc := briefs.NewService(st, gate, extractor, runner, m)

	return &appEnv{
		Store:     st,
		Service:   svc,
		Runner:    runner,
		Converter: convert.NewConverter(st, creator),
	}, nil
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := config.OpenStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
