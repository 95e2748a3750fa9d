package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/flowbuilder/branchkeeper/internal/core/config"
	"github.com/flowbuilder/branchkeeper/internal/core/db"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("status", false, "list migrations and whether they are applied")
	migrateCmd.Flags().String("data-dir", "", "directory for the default sqlite database")
}

func runMigrate(cmd *cobra.Command, args []string) error {
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

	if status, _ := cmd.Flags().GetBool("status"); status {
		return printMigrationStatus(cmd, database)
	}

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("migrations applied", zap.String("db", databaseURL(cfg)))
	return nil
}

func printMigrationStatus(cmd *cobra.Command, database *sqlx.DB) error {
	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MIGRATION\tAPPLIED\tAPPLIED AT\tDURATION")
	for _, s := range statuses {
		appliedAt := "-"
		if s.AppliedAt != nil {
			appliedAt = s.AppliedAt.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%dms\n", s.ID, s.Applied, appliedAt, s.ExecutionMs)
	}
	return w.Flush()
}

// openDatabase opens the configured database, creating the data dir for
// the default sqlite file.
func openDatabase(cfg *config.ServiceConfig) (*sqlx.DB, error) {
	if dbURL == "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
	}
	database, err := db.Open(databaseURL(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return database, nil
}
