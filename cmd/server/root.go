package main

import (
	"log/slog"

	"opinions/internal/config"
	"opinions/internal/db"
	"opinions/internal/observability/logging"

	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "opinions",
	Short: "Opinion sharing API server",
	Long: `Opinions serves the JSON API for posting opinions by topic and
discussing them in threaded, optionally anonymous comments.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		slog.SetDefault(logging.NewLogger(logging.Config{
			ServiceName: "opinions",
			Environment: cfg.Env,
			Level:       cfg.LogLevel,
		}))

		return db.Init(cfg.DBDriver, cfg.DatabaseURL)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db.DB == nil {
			return nil
		}
		sqlDB, err := db.DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedTopicsCmd)
}
