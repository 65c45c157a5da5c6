// Package http serves the prediction API.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"aqiserve/monitoring"
)

// Server HTTP server
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig server settings
type ServerConfig struct {
	Addr           string
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// DefaultServerConfig default server settings
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           "0.0.0.0:8000",
		Timeout:        30 * time.Second,
		MaxBodyBytes:   1 << 20,
		AllowedOrigins: []string{"*"},
	}
}

// NewServer wires the router and middleware around predictor. metrics may
// be nil.
func NewServer(config ServerConfig, predictor Predictor, logger *zap.Logger, metrics *monitoring.Metrics) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := NewHandler(config, predictor, logger, metrics)

	return &Server{
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      handler,
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: logger,
	}
}

// NewHandler returns the full handler stack without a listener, for tests
// and embedding.
func NewHandler(config ServerConfig, predictor Predictor, logger *zap.Logger, metrics *monitoring.Metrics) http.Handler {
	router := NewRouter(predictor, logger, metrics)

	chain := Chain(
		RecoveryMiddleware(logger),                 // 1. recover panics as 500
		LoggerMiddleware(logger),                   // 2. request id + access log
		SecurityHeadersMiddleware,                  // 3. nosniff
		CORSMiddleware(config.AllowedOrigins),      // 4. any origin by default
		RequestSizeMiddleware(config.MaxBodyBytes), // 5. cap request bodies
	)
	return chain(router)
}

// Start blocks serving until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}
