// Package server provides the HTTP server that wires all services together.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rankeval/rank-eval/internal/bus"
	"github.com/rankeval/rank-eval/internal/config"
	"github.com/rankeval/rank-eval/internal/eval"
	"github.com/rankeval/rank-eval/internal/history"
	apperrors "github.com/rankeval/rank-eval/internal/pkg/errors"
	"github.com/rankeval/rank-eval/internal/pkg/logger"
	"github.com/rankeval/rank-eval/internal/pkg/middleware"
	"github.com/rankeval/rank-eval/internal/pkg/security"
)

// Server is the main HTTP server that wires all services together.
type Server struct {
	cfg        Config
	appCfg     config.Config
	log        *logger.Logger
	httpServer *http.Server

	// Services
	events bus.Bus
	runs   history.Store
	calc   *eval.Calculator

	// Handlers
	evalHandler *eval.Handler

	mu      sync.RWMutex
	started bool
}

// Config configures the server.
type Config struct {
	// Host is the address to bind to.
	Host string

	// Port is the HTTP port.
	Port int

	// Version is the application version.
	Version string

	// ReadTimeout is the HTTP read timeout.
	ReadTimeout time.Duration

	// WriteTimeout is the HTTP write timeout.
	WriteTimeout time.Duration

	// ShutdownTimeout is the graceful shutdown timeout.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns sensible server defaults.
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            8080,
		Version:         "dev",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 30 * time.Second,
	}
}

// New creates a new server with all dependencies.
func New(cfg Config, appCfg config.Config, log *logger.Logger) (*Server, error) {
	if cfg.Port == 0 {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		cfg:    cfg,
		appCfg: appCfg,
		log:    log,
	}

	// Initialize event bus
	events, err := bus.NewBus(appCfg.Bus, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}
	if appCfg.Bus.EventLog != "" {
		eventLogger, err := bus.NewEventLogger(appCfg.Bus.EventLog, true)
		if err != nil {
			events.Close()
			return nil, fmt.Errorf("failed to create event logger: %w", err)
		}
		events = bus.NewLoggedBus(events, eventLogger, log)
	}
	s.events = events

	// Initialize run history, falling back to memory when the configured
	// backend is unreachable
	runs, err := history.NewStore(appCfg.History)
	if err != nil {
		log.WithError(err).Warn("Run history backend unavailable, falling back to memory",
			"type", appCfg.History.Type)
		runs = history.NewMemoryStore(appCfg.History.MaxRuns)
	}
	s.runs = runs

	// Initialize metric calculator
	calc, err := eval.NewCalculator(eval.Config{
		DatasetName:  appCfg.Metrics.DatasetName,
		BleuMaxOrder: appCfg.Metrics.BleuMaxOrder,
		BleuSmooth:   appCfg.Metrics.BleuSmooth,
		IncludeBleu:  appCfg.Metrics.IncludeBleu,
	}, log)
	if err != nil {
		events.Close()
		runs.Close()
		return nil, fmt.Errorf("failed to create calculator: %w", err)
	}
	s.calc = calc

	// Initialize handlers
	s.evalHandler = eval.NewHandler(calc, runs, events, log)
	s.evalHandler.DefaultKs = appCfg.Metrics.RetrievalKs

	return s, nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	// Setup routes
	handler := s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	s.log.Info("Starting HTTP server", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("Shutting down server...")

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("HTTP shutdown error", "error", err)
		}
	}

	// Close services
	if s.runs != nil {
		s.runs.Close()
	}
	if s.events != nil {
		s.events.Close()
	}

	s.started = false
	s.log.Info("Server stopped")

	return nil
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Evaluation endpoints
	s.evalHandler.RegisterRoutes(mux)

	// Health and version endpoints
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/version", s.handleVersion)

	// Wrap API responses with request metadata
	var handler http.Handler = ResponseWrapperMiddleware(mux)

	// Rate limiting
	if s.appCfg.Security.RateLimit > 0 {
		rlCfg := middleware.DefaultRateLimiterConfig()
		rlCfg.RequestsPerSecond = float64(s.appCfg.Security.RateLimit)
		rlCfg.Burst = s.appCfg.Security.RateLimit * 2
		handler = middleware.NewRateLimiter(rlCfg).Middleware(handler)
	}

	// Wrap with recovery and logging
	return wrapWithLogging(wrapWithRecovery(handler, s.log), s.log)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": s.cfg.Version})
}

// wrapWithRecovery converts handler panics into sanitized 500 responses.
func wrapWithRecovery(handler http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic in HTTP handler",
					"path", security.SanitizeForLog(r.URL.Path),
					"panic", fmt.Sprintf("%v", rec),
				)
				apperrors.WriteError(w, apperrors.InternalError("internal server error", fmt.Errorf("%v", rec)))
			}
		}()
		handler.ServeHTTP(w, r)
	})
}

// wrapWithLogging returns a handler with logging middleware.
func wrapWithLogging(handler http.Handler, log *logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create response writer wrapper to capture status
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		handler.ServeHTTP(wrapped, r)

		log.Debug("HTTP request",
			"method", r.Method,
			"path", security.SanitizeForLog(r.URL.Path),
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Health returns the server health status.
func (s *Server) Health() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
