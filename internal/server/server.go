// Package server wires the authentication endpoints, middleware, and
// operational routes into an HTTP server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/platewise/platewise/internal/auth"
	"github.com/platewise/platewise/internal/config"
)

// Server is the HTTP front of the authentication core.
type Server struct {
	cfg     config.Config
	logger  *zap.Logger
	handler http.Handler
}

// New assembles the route table and wraps it in the authorization
// middleware.
func New(cfg config.Config, service *auth.Service, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *auth.RateLimiter
	if cfg.LoginRateLimit > 0 {
		limiter = auth.NewRateLimiter(cfg.LoginRateLimit, time.Minute)
	}

	handlers := auth.NewHandlers(service, limiter, logger)
	mw := auth.NewMiddleware(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", handlers.Login)
	mux.HandleFunc("POST /api/auth/logout", handlers.Logout)
	mux.HandleFunc("GET /api/auth/me", handlers.Me)
	mux.HandleFunc("GET /api/auth/sessions", handlers.Sessions)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &Server{
		cfg:     cfg,
		logger:  logger,
		handler: mw.Wrap(mux),
	}
}

// Handler exposes the fully wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.cfg.ListenAddr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
