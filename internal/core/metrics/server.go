package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/core/logging"
	"go.uber.org/zap"
)

// Server serves /metrics on its own listener, separate from gRPC.
type Server struct {
	addr   string
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a metrics HTTP server for addr.
func NewServer(addr string, c *Collector, logger *zap.Logger) *Server {
	logger = logging.OrNop(logger)
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return &Server{
		addr: addr,
		server: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start binds addr and serves until Shutdown. Returns nil after Shutdown.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to bind metrics %s: %w", s.addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("metrics server listening", zap.String("addr", listener.Addr().String()))
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// Shutdown stops accepting scrapes and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
