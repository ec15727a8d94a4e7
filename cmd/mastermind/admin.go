package main

import (
	"fmt"
	"log/slog"

	"example.com/mastermind/internal/auth"
	"example.com/mastermind/internal/config"
	"example.com/mastermind/internal/migrate"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "migrate",
		Short:       "Apply pending database migrations",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{logLevelAnnotation: "info"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			if err := loadDotEnv(envFile); err != nil {
				return err
			}
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			return migrate.Up(cmd.Context(), cfg.Postgres.URL, cfg.Postgres.MigrationsDir, slog.Default())
		},
	}
	cmd.Flags().String("env-file", ".env", "Optional dotenv file")
	return cmd
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for an API client (uses JWT_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, _ := cmd.Flags().GetString("client")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			cfg, err := config.LoadFromEnv()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := auth.NewService([]byte(cfg.Auth.Secret)).Sign(client, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().StringP("client", "c", "", "API client id")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (default JWT_TTL)")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}

func newHashSecretCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "hash-secret <secret>",
		Short:   "Print the bcrypt hash of a client secret for AUTH_CLIENTS",
		Example: `  AUTH_CLIENTS="cli:$(mastermind hash-secret s3cret)"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := auth.HashSecret(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
			return err
		},
	}
}

