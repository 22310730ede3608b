// Package cli wires the replyrank commands: reading a replies CSV,
// submitting it for scoring, polling for results, and exporting the ranked
// output.
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the replyrank CLI. It wires
// up logging, tracing, and the score subcommand.
func NewRootCmd(ver string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "replyrank",
		Short:         "Score tweet replies via a remote scoring service",
		Long:          "replyrank: batch-submit tweet replies for scoring, poll the jobs, and export the ranked results",
		Version:       ver,
		Example:       rootCmdExample,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("config", "", "path to config file (default $HOME/.replyrank/config.yaml)")
	cmd.AddCommand(newScoreCmd())

	return cmd
}

const rootCmdExample = `  # Score a CSV of replies against a scoring service
  replyrank score --input replies.csv --endpoint https://scoring.example.com

  # Smaller batches and a faster poll cadence
  replyrank score --input replies.csv --chunk-size 25 --poll-interval 1s

  # Keep already-submitted jobs when a later batch fails
  replyrank score --input replies.csv --keep-partial

  # Write the ranked export to a file instead of stdout
  replyrank score --input replies.csv --output ranked.csv`

// commandContext returns the command's context, falling back to Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
