package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"example.com/mastermind/internal/app"
	"example.com/mastermind/internal/config"
	"example.com/mastermind/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scorer over HTTP and WebSocket",
		Long: `Starts the scoring service. Settings come from the environment
(PORT, REDIS_ENABLED, POSTGRES_ENABLED, AUTH_REQUIRED, ...); a .env file
in the working directory is loaded first when present. --log-level
overrides LOG_LEVEL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := loadDotEnv(envFile); err != nil {
				return err
			}

			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			log := logging.New(os.Stdout, cfg.Log.Format, logLevel(cmd, cfg.Log.Level))

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
	cmd.Flags().String("env-file", ".env", "Optional dotenv file")
	return cmd
}

// loadDotEnv never overrides variables already set in the environment.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("load %s: %w", path, err)
}
