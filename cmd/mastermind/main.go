// Command mastermind scores one Mastermind guess against a secret, and can
// serve the same scorer over HTTP and WebSocket.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"example.com/mastermind/internal/logging"
	"github.com/spf13/cobra"
)

const (
	defaultLogLevel = "warn"

	// logLevelAnnotation overrides defaultLogLevel for one subcommand.
	logLevelAnnotation = "default-log-level"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mastermind",
		Short: "Solves a round (i.e. an attempt) of the Mastermind game",
		Long: `Scores a guess against a secret code. Both are comma separated digits
between 1 and 9, e.g.

  mastermind -s 1,7,9,3,7 -g 2,7,3,3,1
  Result: (2, 1).

The first number counts digits in the right position (strong), the second
counts distinct digit values present elsewhere in the secret (weak).
Invalid or mismatched input scores (0, 0) unless --strict is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), "text", logLevel(cmd, commandDefaultLogLevel(cmd))))
		},
		RunE: runScore,
	}

	rootCmd.PersistentFlags().StringP("log-level", "l", defaultLogLevel, "Log level (debug, info, warn, error)")

	rootCmd.Flags().StringP(flagSecret, "s", "", "Secret code, e.g. 1,7,9,3,7")
	rootCmd.Flags().StringP(flagGuess, "g", "", "Guess, e.g. 2,7,3,3,1")
	rootCmd.Flags().StringP("format", "f", formatText, "Output format [text, json, yaml]")
	rootCmd.Flags().Bool("strict", false, "Fail on invalid input instead of scoring (0, 0)")
	_ = rootCmd.MarkFlagRequired(flagSecret)
	_ = rootCmd.MarkFlagRequired(flagGuess)

	rootCmd.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newTokenCmd(),
		newHashSecretCmd(),
	)
	return rootCmd
}

// logLevel returns --log-level when it was given, fallback otherwise.
func logLevel(cmd *cobra.Command, fallback string) string {
	if f := cmd.Flag("log-level"); f != nil && f.Changed {
		return f.Value.String()
	}
	return fallback
}

func commandDefaultLogLevel(cmd *cobra.Command) string {
	if level, ok := cmd.Annotations[logLevelAnnotation]; ok {
		return level
	}
	return defaultLogLevel
}
