package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/core/api"
	"github.com/flowbuilder/branchkeeper/internal/core/auth"
	"github.com/flowbuilder/branchkeeper/internal/core/config"
	"github.com/flowbuilder/branchkeeper/internal/core/db"
	"github.com/flowbuilder/branchkeeper/internal/core/metrics"
	"github.com/flowbuilder/branchkeeper/internal/core/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC condition service",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "0.0.0.0", "gRPC server host")
	serveCmd.Flags().Int("port", 50061, "gRPC server port")
	serveCmd.Flags().String("metrics-addr", ":9090", "Prometheus metrics listen address (empty disables)")
	serveCmd.Flags().String("data-dir", "./data", "directory for the default database and evaluation logs")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	database, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	if len(secrets) == 0 {
		return fmt.Errorf("no HMAC secrets configured (set BK_HMAC_SECRET environment variable)")
	}
	authenticator := auth.NewAuthenticator(secrets, queries, logger.Named("auth"))

	collector := metrics.NewCollector()
	engine := conditions.NewEngine(
		conditions.WithLogger(logger.Named("engine")),
		conditions.WithObserver(collector),
	)

	service, err := api.NewConditionService(engine, db.NewBranchStore(queries), cfg, logger.Named("api"))
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg, service, authenticator, collector, logger.Named("grpc"))
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, collector, logger.Named("metrics"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)

	logger.Info("starting BranchKeeper condition service",
		zap.String("version", Version),
		zap.String("addr", cfg.Address()),
		zap.String("metrics_addr", cfg.MetricsAddr),
	)

	g.Go(grpcServer.Start)
	if metricsServer != nil {
		g.Go(metricsServer.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 35*time.Second)
		defer cancel()
		if metricsServer != nil {
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", zap.Error(err))
			}
		}
		return grpcServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
