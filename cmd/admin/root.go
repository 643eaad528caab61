package main

import (
	"database/sql"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/kova/internal/config"
	"github.com/MrJamesThe3rd/kova/internal/database"
	"github.com/MrJamesThe3rd/kova/internal/logging"
)

// env is what every subcommand needs. It is filled by the root command
// before a subcommand runs.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
}

var app env

var rootCmd = &cobra.Command{
	Use:           "kova-admin",
	Short:         "Operator tasks for Kova",
	SilenceUsage:  true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}

		db, err := database.New(cfg.ConnectionString(), database.NewSlowQueryTracer(logger, cfg.DB.SlowThreshold))
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}

		app = env{cfg: cfg, logger: logger, db: db}

		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if app.db != nil {
			app.db.Close()
		}

		if app.logger != nil {
			_ = app.logger.Sync()
		}
	},
}
