// Package server exposes analyses over HTTP.
//
// Routes:
//
//	GET /healthz    database reachability
//	GET /analysis   full analysis, archived when an archive is configured
//	GET /snapshot   fast snapshot
//	GET /changes    fast snapshot compared with the latest archived analysis
//	GET /analyses   archive history
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/dbanalyser/internal/analyser"
	"github.com/koustreak/dbanalyser/internal/archive"
	"github.com/koustreak/dbanalyser/internal/logger"
)

// Pinger checks that the analysed database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Archiver persists full analyses. *archive.Archive implements it.
type Archiver interface {
	Save(ctx context.Context, database string, info *analyser.DatabaseInfo) (archive.Entry, error)
	Latest(ctx context.Context, database string) (*archive.Record, error)
	History(ctx context.Context, database string) ([]archive.Entry, error)
}

// Config controls the listener and per-request limits.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// AnalysisTimeout bounds each analysis or snapshot. Zero means no limit.
	AnalysisTimeout time.Duration
}

// Deps are the collaborators the handlers call. Archive may be nil.
type Deps struct {
	Database string
	DB       Pinger
	Analyser analyser.SchemaAnalyser
	Archive  Archiver
}

// Server serves the HTTP API for one database.
type Server struct {
	cfg    Config
	deps   Deps
	log    *logger.Logger
	router chi.Router
}

// New builds the router. It does not start listening.
func New(cfg Config, deps Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{
		cfg:  cfg,
		deps: deps,
		log:  log.With().Str("component", "server").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	r.Get("/analysis", s.handleAnalysis)
	r.Get("/snapshot", s.handleSnapshot)
	r.Get("/changes", s.handleChanges)
	r.Get("/analyses", s.handleHistory)

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) analysisContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.AnalysisTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.cfg.AnalysisTimeout)
}
