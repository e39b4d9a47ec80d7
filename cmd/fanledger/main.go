// Command fanledger serves the fan points ledger API and manages its database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aimd54/fan-ledger/internal/config"
	"github.com/aimd54/fan-ledger/internal/repository"
	"github.com/aimd54/fan-ledger/pkg/logger"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "fanledger",
		Short:         "Fan engagement points ledger",
		Long:          "fanledger tracks fan points, tiers, reward redemptions and contest entries.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")

	root.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
		newSeedCmd(&configPath),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// bootstrap loads configuration and initializes the global logger.
func bootstrap(configPath string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	log := logger.Get()

	log.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("database_driver", cfg.Database.Driver).
		Msg("Configuration loaded")

	return cfg, log, nil
}

// openDatabase connects and brings the schema up to date. Postgres uses the
// versioned migrations; sqlite uses gorm auto-migration.
func openDatabase(cfg *config.Config, log *logger.Logger) (*repository.DB, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		if err := repository.MigrateUp(cfg.Database.Postgres.URL(), log); err != nil {
			return nil, err
		}
	}

	db, err := repository.NewDB(&cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverSQLite {
		if err := db.AutoMigrate(); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite schema: %w", err)
		}
	}
	return db, nil
}
