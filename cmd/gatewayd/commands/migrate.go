package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cloudcrate/filegate/internal/logger"
	"github.com/cloudcrate/filegate/pkg/config"
	"github.com/cloudcrate/filegate/pkg/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Long: `Apply pending database schema migrations.

For a Postgres-backed deployment this runs the embedded golang-migrate
migrations directly against the configured database. SQLite deployments
have nothing to do here: gatewayd auto-migrates its SQLite schema on every
startup, matching the sqlite path "start" already takes.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Output: cfg.Logging.Output}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Database.Type != store.DatabaseTypePostgres {
		fmt.Println("database type is sqlite; schema is auto-migrated on startup, nothing to do")
		return nil
	}

	logger.Info("applying database migrations", "type", cfg.Database.Type)
	if err := store.RunMigrations(&cfg.Database.Postgres); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Println("migrations completed successfully")
	return nil
}
