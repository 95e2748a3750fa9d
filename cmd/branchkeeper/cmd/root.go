package cmd

import (
	"fmt"

	"github.com/flowbuilder/branchkeeper/internal/core/config"
	"github.com/flowbuilder/branchkeeper/internal/core/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const Version = "0.1.0"

var (
	configFile string
	dbURL      string
	logLevel   string
	logFormat  string
)

// Usage is printed for flag errors only, not for failures while running.
var rootCmd = &cobra.Command{
	Use:          "branchkeeper",
	Short:        "BranchKeeper workflow condition engine",
	Long:         `BranchKeeper evaluates If/Else branch conditions against workflow records and serves them over gRPC.`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db-url", "", "database connection URL (sqlite://path or postgres://...); defaults to sqlite in the data dir")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "json", "log format (json, text)")
	rootCmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		c.PrintErrln(c.UsageString())
		return err
	})
}

func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration for cmd and builds its logger.
func setup(cmd *cobra.Command) (*config.ServiceConfig, *zap.Logger, error) {
	cfg, err := config.LoadConfig(configFile, cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// databaseURL prefers --db-url over the data dir default.
func databaseURL(cfg *config.ServiceConfig) string {
	if dbURL != "" {
		return dbURL
	}
	return cfg.DatabaseURL()
}
