package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"example.com/mastermind/internal/mastermind"
	"example.com/mastermind/internal/scoring"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	flagSecret = "secret_code"
	flagGuess  = "guess"

	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"

	usageHint = "Please use only integers between 1 and 9 (both inclusive), as in 2,5,4,4,9,3."
)

// errUsage marks input the user has to fix; the hint is already printed.
var errUsage = errors.New("usage error")

func runScore(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	strict, _ := cmd.Flags().GetBool("strict")

	secret, err := parseFlag(cmd, flagSecret)
	if err != nil {
		return err
	}
	guess, err := parseFlag(cmd, flagGuess)
	if err != nil {
		return err
	}

	res := scoring.NewService(nil, nil).Score(cmd.Context(), secret, guess)
	if strict && !res.Valid {
		return fmt.Errorf("invalid input: %s", res.Reason)
	}

	return render(cmd.OutOrStdout(), format, res)
}

func parseFlag(cmd *cobra.Command, name string) (mastermind.Sequence, error) {
	raw, _ := cmd.Flags().GetString(name)
	seq, err := mastermind.ParseSequence(raw)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), usageHint)
		return nil, fmt.Errorf("%w: --%s: %v", errUsage, name, err)
	}
	return seq, nil
}

func render(w io.Writer, format string, res scoring.Result) error {
	switch format {
	case formatText, "":
		_, err := fmt.Fprintf(w, "Result: %s.\n", res.Score)
		return err
	case formatJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		return e.Encode(res)
	case formatYAML, "yml":
		return yaml.NewEncoder(w).Encode(res)
	default:
		return fmt.Errorf("unsupported format %q (want text|json|yaml)", format)
	}
}
