package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/IshaanNene/postwatch/internal/config"
	"github.com/IshaanNene/postwatch/internal/observability"
	"github.com/IshaanNene/postwatch/internal/types"
)

// Error messages returned to API clients.
const (
	msgInvalidDate = "Ugyldig datoformat."
	msgFetchFailed = "Feil ved henting av data."
	msgNotFound    = "Ikke funnet."
)

// Lister is the query interface the API serves.
type Lister interface {
	GetListing(ctx context.Context, date string) ([]types.Entry, error)
}

// StatusFunc reports extra runtime state for /api/status.
type StatusFunc func() map[string]any

// Server provides the HTTP API for listing queries.
type Server struct {
	mux     *http.ServeMux
	srv     *http.Server
	port    int
	lister  Lister
	metrics *observability.Metrics
	status  StatusFunc
	started time.Time
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithMetrics serves m at path and under /api/stats.
func WithMetrics(m *observability.Metrics, path string) Option {
	return func(s *Server) {
		s.metrics = m
		if path != "" {
			s.mux.Handle("GET "+path, m)
		}
	}
}

// WithStatus adds fn's output to /api/status.
func WithStatus(fn StatusFunc) Option {
	return func(s *Server) { s.status = fn }
}

// NewServer creates a new API server.
func NewServer(port int, lister Lister, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		mux:     http.NewServeMux(),
		port:    port,
		lister:  lister,
		started: time.Now(),
		logger:  logger.With("component", "api_server"),
	}

	s.registerRoutes()
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler { return s.mux }

// Start starts the API server in the background.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("API server starting", "addr", addr)

	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	s.logger.Info("API server shutting down")
	return s.srv.Shutdown(ctx)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/status", s.handleStatus)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)

	s.mux.HandleFunc("GET /api/postlist", s.handlePostlist)

	s.mux.HandleFunc("/api/", s.handleNotFound)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"uptime": time.Since(s.started).Round(time.Second).String(),
	}
	if s.status != nil {
		for k, v := range s.status() {
			body[k] = v
		}
	}
	s.jsonResponse(w, http.StatusOK, body)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"error": "metrics disabled"})
		return
	}
	s.jsonResponse(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handlePostlist(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")

	entries, err := s.lister.GetListing(r.Context(), date)
	if err != nil {
		var invalid *types.InvalidDateError
		if errors.As(err, &invalid) {
			s.logger.Warn("invalid date format", "date", date)
			s.jsonResponse(w, http.StatusBadRequest, map[string]string{"error": msgInvalidDate})
			return
		}
		s.logger.Error("listing request failed", "date", date, "error", err)
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{"error": msgFetchFailed})
		return
	}
	if entries == nil {
		entries = []types.Entry{}
	}
	s.jsonResponse(w, http.StatusOK, entries)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusNotFound, map[string]string{"error": msgNotFound})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Debug("write response", "error", err)
	}
}
