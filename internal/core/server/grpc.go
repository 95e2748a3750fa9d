// Package server provides gRPC server lifecycle management.
package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/core/api"
	"github.com/flowbuilder/branchkeeper/internal/core/auth"
	"github.com/flowbuilder/branchkeeper/internal/core/config"
	"github.com/flowbuilder/branchkeeper/internal/core/logging"
	"github.com/flowbuilder/branchkeeper/internal/core/metrics"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// shutdownGrace bounds GracefulStop before a forced stop.
const shutdownGrace = 30 * time.Second

// GRPCServer manages gRPC server lifecycle.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	config *config.ServiceConfig
	logger *zap.Logger
}

// NewGRPCServer creates gRPC server with interceptors and service registration.
// Interceptor order: metrics (sees every outcome), timeout, auth.
func NewGRPCServer(cfg *config.ServiceConfig, service api.ConditionServiceServer, authenticator *auth.Authenticator, collector *metrics.Collector, logger *zap.Logger) (*GRPCServer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if authenticator == nil {
		return nil, fmt.Errorf("authenticator cannot be nil")
	}
	logger = logging.OrNop(logger)

	var interceptors []grpc.UnaryServerInterceptor
	if collector != nil {
		interceptors = append(interceptors, collector.UnaryInterceptor())
	}
	interceptors = append(interceptors,
		timeoutInterceptor(cfg.RequestTimeout),
		authenticator.UnaryInterceptor(),
	)

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors...),
		grpc.MaxConcurrentStreams(uint32(cfg.MaxConnections)),
	)
	api.RegisterConditionServiceServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ConditionServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		config: cfg,
		logger: logger,
	}, nil
}

// Start binds the configured address and serves until Shutdown.
func (s *GRPCServer) Start() error {
	addr := s.config.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener. Tests pass a bufconn listener.
func (s *GRPCServer) Serve(listener net.Listener) error {
	s.logger.Info("grpc server listening", zap.String("addr", listener.Addr().String()))
	return s.server.Serve(listener)
}

// Shutdown marks the service NOT_SERVING and gracefully stops with a 30-second bound.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(shutdownGrace)
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-timer.C:
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}

// timeoutInterceptor bounds every handler by the configured request timeout.
func timeoutInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		if timeout <= 0 {
			return handler(ctx, req)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}
