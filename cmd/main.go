package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "1.0.0"

func main() {
	logger := newLogger(os.Getenv("APP_ENV"))
	slog.SetDefault(logger)

	if err := newRootCmd(logger).Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "apartmani",
		Short:         "Apartmani - rental units and reservations backend",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file")

	cmd.AddCommand(newServeCmd(logger, &envFile))
	cmd.AddCommand(newMigrateCmd(logger, &envFile))
	return cmd
}
