package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/weiawesome/wes-io-live/support-service/internal/config"
	"github.com/weiawesome/wes-io-live/support-service/internal/domain"
	"github.com/weiawesome/wes-io-live/support-service/pkg/database"
	pkglog "github.com/weiawesome/wes-io-live/support-service/pkg/log"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			initLogger(cfg)

			db, err := database.New(&cfg.Database)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}

			models := domain.Models()
			if err := database.AutoMigrate(db, models...); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}

			l := pkglog.L()
			l.Info().Str("driver", cfg.Database.Driver).Int("tables", len(models)).Msg("database migration completed")
			fmt.Fprintf(cmd.OutOrStdout(), "migrated %d tables (%s)\n", len(models), cfg.Database.Driver)
			return nil
		},
	}
}

func initLogger(cfg *config.Config) {
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty,
		ServiceName: serviceName,
	})
}
