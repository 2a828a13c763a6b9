package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"

	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/ratelimit"
	"mercator-hq/strcalc/pkg/security/auth"
	"mercator-hq/strcalc/pkg/service"
	"mercator-hq/strcalc/pkg/telemetry/health"
	"mercator-hq/strcalc/pkg/telemetry/metrics"
)

// VersionInfo identifies the running build on /version.
type VersionInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Deps are the components the server exposes. Service is required.
type Deps struct {
	Service *service.Service

	// Journal backs GET /v1/journal. Nil disables the route.
	Journal journal.Storage

	// Health backs /health and /ready. Nil uses an empty checker.
	Health *health.Checker

	// Metrics backs the metrics route and HTTP request metrics.
	Metrics     *metrics.Collector
	MetricsPath string

	// Auth guards the /v1 routes. Nil leaves them open.
	Auth *auth.Middleware

	Logger  *slog.Logger
	Version VersionInfo
}

// Server is the strcalc HTTP server.
type Server struct {
	config     *config.ServerConfig
	deps       Deps
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	limits     *ratelimit.Registry

	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a server. It does not listen until Start.
func NewServer(cfg *config.ServerConfig, deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Health == nil {
		deps.Health = health.New(0)
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}

	s := &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}
	if rl := cfg.RateLimit; rl.Enabled {
		s.limits = ratelimit.NewRegistry(ratelimit.Config{
			RequestsPerSecond: rl.RequestsPerSecond,
			Burst:             rl.Burst,
			RequestsPerMinute: rl.RequestsPerMinute,
			BytesPerMinute:    rl.BytesPerMinute,
			MaxConcurrent:     rl.MaxConcurrent,
		}, rl.IdleTTL)
	}
	return s
}

// Start listens on the configured address and serves until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	listener, err := net.Listen("tcp", s.config.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.ListenAddress, err)
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully shuts down the server within ShutdownTimeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		httpServer := s.httpServer
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped")
	})

	return shutdownErr
}

// IsRunning reports whether the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.handle(mux, "POST /v1/evaluate", s.protect(http.HandlerFunc(s.handleEvaluate)))
	if s.deps.Journal != nil {
		s.handle(mux, "GET /v1/journal", s.protect(http.HandlerFunc(s.handleJournal)))
	}
	s.handle(mux, "GET /health", s.deps.Health.LivenessHandler())
	s.handle(mux, "GET /ready", s.deps.Health.ReadinessHandler())
	s.handle(mux, "GET /version", health.VersionHandler(
		s.deps.Version.Version, s.deps.Version.Commit, s.deps.Version.BuildTime,
	))
	if s.deps.Metrics.Enabled() {
		mux.Handle("GET "+s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	return handler
}

// protect applies API key authentication when it is configured.
func (s *Server) protect(h http.Handler) http.Handler {
	if s.deps.Auth == nil {
		return h
	}
	return s.deps.Auth.Handle(h)
}

// handle registers h under pattern with per-route request metrics.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, s.instrument(pattern, h))
}
