package main

import (
	"log/slog"

	"apartmani/internal/config"
	"apartmani/pkg/database"

	"github.com/spf13/cobra"
)

func newMigrateCmd(logger *slog.Logger, envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(logger, *envFile)
			if err != nil {
				return err
			}
			return database.Migrate(cmd.Context(), cfg.DatabaseURL, logger)
		},
	}
}
