// Package server exposes the report pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/verte-zerg/testlens/internal/pipeline"
	"github.com/verte-zerg/testlens/internal/store"
)

// maxBodyBytes caps the size of an uploaded record.
const maxBodyBytes = 10 << 20

// Reports reads persisted reports.
type Reports interface {
	GetReport(ctx context.Context, id string) (store.Report, error)
	ListReports(ctx context.Context, filter store.ListFilter) ([]store.ReportMeta, error)
}

// Options configures the HTTP server.
type Options struct {
	AllowedOrigins []string
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Server routes API requests to the pipeline and the report store.
type Server struct {
	pipeline *pipeline.Pipeline
	reports  Reports
	logger   *slog.Logger
	router   chi.Router
}

// New builds a server. reports may be nil, in which case the history
// endpoints answer 503 and reports are not saved.
func New(p *pipeline.Pipeline, reports Reports, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	s := &Server{pipeline: p, reports: reports, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length", "Location"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(api chi.Router) {
		api.Post("/summaries", s.handleSummary)
		api.Route("/reports", func(rr chi.Router) {
			rr.Post("/", s.handleCreateReport)
			rr.Get("/", s.handleListReports)
			rr.Get("/{reportID}", s.handleGetReport)
		})
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
