package cli

import (
	"github.com/spf13/cobra"

	"github.com/replylab/replyrank/internal/config"
	"github.com/replylab/replyrank/internal/logging"
)

// setupLogging configures logging from config defaults, environment
// variables, and CLI flags, then stores the logger and a trace ID on the
// command context.
func setupLogging(cmd *cobra.Command) {
	loggingCfg := config.New().Logging

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
	}

	base := logging.New(logging.Config{
		Level:  loggingCfg.Level,
		Format: loggingCfg.Format,
		Output: cmd.ErrOrStderr(),
	})
	logger = logging.ComponentLogger(base, "cli")

	ctx := commandContext(cmd)
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = logging.WithContext(ctx, logger)
	cmd.SetContext(ctx)

	logger.Debug().
		Str("command", cmd.Name()).
		Str("trace_id", traceID).
		Msg("command started")
}
