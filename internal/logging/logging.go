// Package logging provides zerolog construction and context plumbing for
// replyrank. All components obtain their logger through FromContext so a
// single configured logger (and its trace ID) flows through the whole
// submit/poll/merge cycle.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config controls logger construction.
type Config struct {
	// Level is a zerolog level name ("trace".."panic"). Invalid or empty
	// values fall back to "info".
	Level string

	// Format selects the output encoding: "console" (default) or "json".
	Format string

	// Output overrides the destination writer. Defaults to os.Stderr.
	Output io.Writer
}

// New constructs a zerolog.Logger from cfg.
func New(cfg Config) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	if !strings.EqualFold(cfg.Format, "json") {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// FromContext returns the logger stored on ctx, or a disabled logger when
// none has been attached. Components never log through a nil logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}

// WithContext attaches logger to ctx so downstream calls can recover it via
// FromContext.
func WithContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return logger.WithContext(ctx)
}

// ComponentLogger returns a child logger tagged with a component name.
// Component tags keep interleaved submit/poll output attributable.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}
