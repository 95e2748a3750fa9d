package cmd

import (
	"fmt"

	"github.com/flowbuilder/branchkeeper/internal/core/auth"
	"github.com/flowbuilder/branchkeeper/internal/core/config"
	"github.com/flowbuilder/branchkeeper/internal/core/db"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "Manage tenant API keys",
}

var apikeyCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Issue a new API key for a tenant",
	Long: `Create signs a new key with the newest HMAC secret and stores only its hash.
The key is printed once and cannot be recovered.`,
	RunE: runAPIKeyCreate,
}

var apikeyRevokeCmd = &cobra.Command{
	Use:   "revoke KEY_ID",
	Short: "Revoke a tenant API key",
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyRevoke,
}

func init() {
	rootCmd.AddCommand(apikeyCmd)
	apikeyCmd.AddCommand(apikeyCreateCmd, apikeyRevokeCmd)
	apikeyCmd.PersistentFlags().String("tenant", "", "tenant id")
	apikeyCmd.PersistentFlags().String("data-dir", "", "directory for the default sqlite database")
	_ = apikeyCmd.MarkPersistentFlagRequired("tenant")
	apikeyCreateCmd.Flags().String("name", "", "human-readable key name")
}

// keyStore opens and migrates the database behind the key commands.
func keyStore(cmd *cobra.Command) (*db.APIKeyStore, func() error, *zap.Logger, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	database, err := openDatabase(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := db.MigrateUp(database); err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	queries, err := db.LoadQueries(database)
	if err != nil {
		database.Close()
		return nil, nil, nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return db.NewAPIKeyStore(queries), database.Close, logger, nil
}

func runAPIKeyCreate(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")
	name, _ := cmd.Flags().GetString("name")

	secrets, err := config.HMACSecrets()
	if err != nil {
		return fmt.Errorf("failed to load HMAC secrets: %w", err)
	}
	secretID, secret, err := auth.SigningSecret(secrets)
	if err != nil {
		return err
	}

	store, closeDB, logger, err := keyStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()
	defer logger.Sync()

	key, hash, err := auth.GenerateAPIKey(secretID, secret)
	if err != nil {
		return err
	}
	id, err := store.CreateAPIKey(cmd.Context(), types.TenantID(tenant), secretID, hash, name)
	if err != nil {
		return err
	}

	logger.Info("api key created",
		zap.String("tenant_id", tenant),
		zap.String("key_id", id),
		zap.String("secret_id", secretID),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "key_id: %s\napi_key: %s\n", id, key)
	return nil
}

func runAPIKeyRevoke(cmd *cobra.Command, args []string) error {
	tenant, _ := cmd.Flags().GetString("tenant")

	store, closeDB, logger, err := keyStore(cmd)
	if err != nil {
		return err
	}
	defer closeDB()
	defer logger.Sync()

	if err := store.RevokeAPIKey(cmd.Context(), types.TenantID(tenant), args[0]); err != nil {
		return err
	}
	logger.Info("api key revoked", zap.String("tenant_id", tenant), zap.String("key_id", args[0]))
	return nil
}
