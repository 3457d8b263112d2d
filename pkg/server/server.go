package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"florence-hq/vesta/pkg/config"
	"florence-hq/vesta/pkg/review"
	"florence-hq/vesta/pkg/telemetry/health"
	"florence-hq/vesta/pkg/telemetry/metrics"
)

// Engine is the decision surface the server exposes over HTTP. *review.Engine
// satisfies it; tests substitute fakes.
type Engine interface {
	Decide(ctx context.Context, role review.Role, pctx review.PresentingContext) bool
	MarkSkipped(ctx context.Context, engagementID string)
	IsSkipped(engagementID string) bool
	SkippedEngagements() []string
	ResetLifetime()
	ClearAll(ctx context.Context) error
	State() review.State
}

// Server is the admin HTTP server hosting the review engine.
type Server struct {
	config      *config.ServerConfig
	metricsPath string
	engine      Engine
	checker     *health.Checker
	logger      *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates an admin server for the given engine. The checker backs
// the readiness probe; a nil logger uses slog.Default().
func NewServer(cfg *config.ServerConfig, metricsPath string, engine Engine, checker *health.Checker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if checker == nil {
		checker = health.New(0)
	}

	return &Server{
		config:      cfg,
		metricsPath: metricsPath,
		engine:      engine,
		checker:     checker,
		logger:      logger.With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// listener fails. Cancellation triggers a graceful shutdown bounded by the
// configured shutdown timeout.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	handler := s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         s.config.ListenAddress,
		Handler:      handler,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting admin server",
			"address", s.config.ListenAddress,
			"metrics_path", s.metricsPath,
			"allow_clear", s.config.AllowClear,
		)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully shuts down the server, letting in-flight requests
// finish within the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("admin server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the configured HTTP handler. Tests mount it on httptest
// servers without opening a real listener.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}

// Checker returns the health checker so the daemon can register component
// probes before starting the server.
func (s *Server) Checker() *health.Checker {
	return s.checker
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.checker.LivenessHandler())
	mux.HandleFunc("/readyz", s.checker.ReadinessHandler())
	mux.Handle(s.metricsPath, metrics.Handler())

	mux.HandleFunc("/v1/decide", s.handleDecide)
	mux.HandleFunc("/v1/skips", s.handleSkips)
	mux.HandleFunc("/v1/skips/", s.handleSkipCheck)
	mux.HandleFunc("/v1/lifetime/reset", s.handleLifetimeReset)
	mux.HandleFunc("/v1/state", s.handleState)
	mux.HandleFunc("/v1/state/clear", s.handleStateClear)

	var handler http.Handler = mux

	handler = requestIDMiddleware(handler)
	handler = loggingMiddleware(s.logger)(handler)
	handler = recoveryMiddleware(s.logger)(handler)

	return handler
}
