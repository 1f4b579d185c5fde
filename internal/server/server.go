// Package server exposes the brief pipeline over HTTP for the creator
// dashboard. Identity is taken from trusted gateway headers; this service
// does not do its own authentication.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/collabops/brief-cli/internal/briefs"
	"github.com/collabops/brief-cli/internal/convert"
)

// Options tunes the HTTP server.
type Options struct {
	Port            int
	ShutdownTimeout time.Duration
	MaxUploadBytes  int64
	AllowedOrigins  []string
}

// Server serves the brief API.
type Server struct {
	svc       *briefs.Service
	converter *convert.Converter
	opts      Options
	router    chi.Router
}

// New builds the server and its routes.
func New(svc *briefs.Service, converter *convert.Converter, opts Options) *Server {
	if opts.Port == 0 {
		opts.Port = 8080
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 15 * time.Second
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{svc: svc, converter: converter, opts: opts}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler, used directly by the tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Creator-ID", "X-Subscription-Tier"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/briefs", func(r chi.Router) {
		r.Use(requireCreator)
		r.Post("/", s.handleCreateBrief)
		r.Post("/upload", s.handleUploadBrief)
		r.Get("/", s.handleListBriefs)

		r.Route("/{briefID}", func(r chi.Router) {
			r.Get("/", s.handleGetBrief)
			r.Patch("/", s.handleUpdateMeta)
			r.Delete("/", s.handleDeleteBrief)
			r.Post("/archive", s.handleArchiveBrief)
			r.Post("/reanalyze", s.handleReanalyze)
			r.Post("/questions", s.handleAddQuestion)
			r.Post("/questions/{questionID}/answer", s.handleAnswerQuestion)
			r.Post("/clarifications/send", s.handleSendClarifications)
			r.Post("/convert", s.handleConvert)
		})
	})

	return r
}

// ListenAndServe runs the server until the context is canceled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.opts.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.Int("port", s.opts.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- eris.Wrap(err, "server: listen")
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zap.L().Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "server: shutdown")
	}
	return <-errCh
}
