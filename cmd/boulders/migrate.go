package main

import (
	"github.com/spf13/cobra"

	"github.com/aliskhannn/boulder-progress/internal/infra/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and seed the boulder catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			dsn, err := cfg.DB.DSN()
			if err != nil {
				return err
			}

			if err := postgres.Migrate(dsn); err != nil {
				return err
			}

			log.Info("migrations applied")
			return nil
		},
	}
}
