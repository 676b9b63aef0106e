// Package server provides the HTTP REST API for the schedule board.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jonathan/schedule-board/internal/cache"
	"github.com/jonathan/schedule-board/internal/db"
	"github.com/jonathan/schedule-board/internal/schedule"
)

// TableFetcher retrieves the raw schedule table from the configured source.
type TableFetcher interface {
	FetchTable(ctx context.Context) (*schedule.Table, error)
}

// ScheduleWriter writes a canonical schedule back to the source. Sources
// without write-back leave it nil.
type ScheduleWriter interface {
	WriteSchedule(ctx context.Context, s schedule.Schedule) error
}

// RunStore persists run history. Deployments without a database leave it
// nil.
type RunStore interface {
	SaveRun(ctx context.Context, run *db.Run) (uuid.UUID, error)
	ListRuns(ctx context.Context, sourceKey string, limit int) ([]db.Run, error)
}

// Config holds server configuration
type Config struct {
	Port      int
	APIKey    string
	SourceKey string
	CacheTTL  time.Duration
}

// Deps wires the server's collaborators.
type Deps struct {
	Fetch     TableFetcher
	Write     ScheduleWriter
	Store     RunStore
	Processor *schedule.Processor
	Logger    zerolog.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	cache      *cache.Loader
	deps       Deps
	apiKey     string
	sourceKey  string
	log        zerolog.Logger
	now        func() time.Time
}

// New creates a new server instance
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cache:     cache.NewLoader(cfg.CacheTTL),
		deps:      deps,
		apiKey:    cfg.APIKey,
		sourceKey: cfg.SourceKey,
		log:       deps.Logger,
		now:       time.Now,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /schedule", s.handleSchedule)
	mux.HandleFunc("GET /schedule/summary", s.handleSummary)
	mux.HandleFunc("GET /schedule/export", s.handleExport)
	mux.HandleFunc("POST /schedule/refresh", s.handleRefresh)
	mux.HandleFunc("POST /schedule/save", s.handleSave)
	mux.HandleFunc("GET /runs", s.handleListRuns)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withAPIKey(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the configured handler chain, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("server starting")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-stop:
	}
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info().Msg("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withAPIKey rejects requests missing the configured key. An empty
// configured key disables the check. /health stays open for probes.
func (s *Server) withAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey != "" && r.URL.Path != "/health" {
			if r.Header.Get("X-API-Key") != s.apiKey {
				s.errorResponse(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
