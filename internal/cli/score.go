package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/replylab/replyrank/internal/batch"
	"github.com/replylab/replyrank/internal/client"
	"github.com/replylab/replyrank/internal/config"
	"github.com/replylab/replyrank/internal/dataset"
	"github.com/replylab/replyrank/internal/poll"
	"github.com/replylab/replyrank/internal/session"
	"github.com/replylab/replyrank/internal/submit"
)

// scoreFlags holds the score command's flag values.
type scoreFlags struct {
	input        string
	output       string
	endpoint     string
	chunkSize    int
	pollInterval time.Duration
	keepPartial  bool
}

// newScoreCmd creates the score command: read CSV, submit in batches, poll
// until every job completes, render the summary, export the ranked CSV.
func newScoreCmd() *cobra.Command {
	var flags scoreFlags

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Submit a replies CSV for scoring and export ranked results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScoreCmd(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "path to the replies CSV (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "path for the ranked CSV export (default stdout)")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "scoring service base URL (overrides config)")
	cmd.Flags().IntVar(&flags.chunkSize, "chunk-size", 0, "rows per batch (overrides config)")
	cmd.Flags().DurationVar(&flags.pollInterval, "poll-interval", 0, "delay between polling rounds (overrides config)")
	cmd.Flags().BoolVar(&flags.keepPartial, "keep-partial", false,
		"when a later batch fails, keep polling the jobs that were already submitted")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// resolveConfig loads configuration and applies flag overrides.
func resolveConfig(cmd *cobra.Command, flags scoreFlags) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		if def := config.DefaultPath(); def != "" {
			if _, err := os.Stat(def); err == nil {
				path = def
			}
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	if flags.endpoint != "" {
		cfg.Endpoint = flags.endpoint
	}
	if flags.chunkSize != 0 {
		cfg.ChunkSize = flags.chunkSize
	}
	if flags.pollInterval != 0 {
		cfg.PollInterval = flags.pollInterval
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Endpoint == "" {
		return nil, config.ErrMissingEndpoint
	}
	return cfg, nil
}

//nolint:gocognit // The command run is one linear submit→poll→export sequence.
func runScoreCmd(cmd *cobra.Command, flags scoreFlags) error {
	ctx := commandContext(cmd)

	cfg, err := resolveConfig(cmd, flags)
	if err != nil {
		return err
	}

	f, err := os.Open(flags.input)
	if err != nil {
		return fmt.Errorf("opening input: %w", err)
	}
	rows, err := dataset.ReadCSV(f)
	_ = f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", flags.input, err)
	}

	c, err := client.New(cfg.Endpoint)
	if err != nil {
		return err
	}

	showProgress := isTerminal(os.Stderr)
	submitter := submit.New(c, submit.Options{
		ChunkSize:   cfg.ChunkSize,
		KeepPartial: flags.keepPartial,
		OnProgress: func(p *batch.Progress) {
			if showProgress {
				fmt.Fprintf(cmd.ErrOrStderr(), "\rsubmitting: %3.0f%% (%d/%d batches)",
					p.Percent(), p.SubmittedBatches(), p.TotalBatches())
			}
		},
	})

	meta := session.Meta{Filename: filepath.Base(flags.input), TotalRows: len(rows)}
	sess, err := submitter.Submit(ctx, rows, meta)
	if showProgress {
		fmt.Fprintln(cmd.ErrOrStderr())
	}
	if err != nil {
		if sess == nil {
			return err
		}
		// --keep-partial: poll what was accepted, but tell the user.
		if len(sess.Jobs()) == 0 {
			return err
		}
		cmd.PrintErrf("Warning: submission incomplete, polling %d accepted jobs: %v\n", len(sess.Jobs()), err)
	}

	if err := awaitResults(cmd, c, sess, cfg.PollInterval); err != nil {
		return err
	}

	renderSummary(cmd.ErrOrStderr(), sess.Summary(), len(sess.Jobs()))

	out := cmd.OutOrStdout()
	if flags.output != "" {
		of, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer of.Close() //nolint:errcheck
		out = of
	}
	if err := dataset.ExportCSV(out, sess.Results()); err != nil {
		return err
	}
	if flags.output != "" {
		cmd.PrintErrf("Wrote %d ranked results to %s\n", sess.Summary().TotalProcessed, flags.output)
	}
	return nil
}

// awaitResults drives the poll coordinator until every job completes, the
// context is cancelled, or a manual check surfaces a genuine error.
func awaitResults(cmd *cobra.Command, fetcher poll.JobFetcher, sess *session.Session, interval time.Duration) error {
	ctx := commandContext(cmd)

	coord := poll.New(fetcher, sess, poll.Options{
		Interval: interval,
		OnRound: func(outstanding int) {
			logger.Debug().Int("outstanding", outstanding).Msg("poll round complete")
		},
	})

	done, err := coord.CheckOnce(ctx)
	if err != nil {
		return err
	}
	if done {
		return nil
	}

	// Only wait on the loop if the check actually promoted into continuous
	// polling; an Idle coordinator has no loop channel to wait on.
	if coord.State() != poll.StatePolling {
		return nil
	}

	select {
	case <-coord.Done():
	case <-ctx.Done():
		coord.Stop()
		return ctx.Err()
	}

	if coord.State() != poll.StateAllDone {
		return errors.New("polling stopped before all jobs completed")
	}
	return nil
}
