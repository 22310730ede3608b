// Package config loads replyrank configuration from defaults, an optional
// YAML file, and environment variable overrides, in that order. Later
// sources win.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied before any file or environment override.
const (
	// DefaultChunkSize is the number of rows per submitted batch.
	DefaultChunkSize = 50

	// DefaultPollInterval is the delay between polling rounds.
	DefaultPollInterval = 3 * time.Second
)

// Environment variables recognized as overrides.
const (
	EnvEndpoint     = "REPLYRANK_ENDPOINT"
	EnvChunkSize    = "REPLYRANK_CHUNK_SIZE"
	EnvPollInterval = "REPLYRANK_POLL_INTERVAL"
	EnvLogLevel     = "REPLYRANK_LOG_LEVEL"
	EnvLogFormat    = "REPLYRANK_LOG_FORMAT"
)

// ErrInvalidChunkSize indicates a non-positive chunk size from file, env,
// or flag input.
var ErrInvalidChunkSize = errors.New("chunk size must be a positive integer")

// ErrMissingEndpoint indicates no scoring endpoint was configured.
var ErrMissingEndpoint = errors.New("scoring endpoint is not configured")

// LoggingConfig configures the logger (see internal/logging).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the effective replyrank configuration.
type Config struct {
	// Endpoint is the base URL of the remote scoring service.
	Endpoint string `yaml:"endpoint"`

	// ChunkSize is the number of rows per submitted batch.
	ChunkSize int `yaml:"chunk_size"`

	// PollInterval is the delay between polling rounds.
	PollInterval time.Duration `yaml:"poll_interval"`

	Logging LoggingConfig `yaml:"logging"`
}

// New returns a Config populated with defaults and environment overrides.
func New() *Config {
	cfg := &Config{
		ChunkSize:    DefaultChunkSize,
		PollInterval: DefaultPollInterval,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
	cfg.applyEnv()
	return cfg
}

// Load builds a Config from defaults, the YAML file at path (when path is
// non-empty), and environment overrides. A missing explicit file is an
// error; pass "" to skip file loading.
func Load(path string) (*Config, error) {
	cfg := &Config{
		ChunkSize:    DefaultChunkSize,
		PollInterval: DefaultPollInterval,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location
// ($HOME/.replyrank/config.yaml), or "" when the home directory cannot be
// determined.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".replyrank", "config.yaml")
}

// Validate checks the configuration before any network activity.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidChunkSize, c.ChunkSize)
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	return nil
}

// applyEnv overlays recognized environment variables onto c. Unparsable
// numeric values are ignored rather than fatal; Validate catches anything
// that matters downstream.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvChunkSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ChunkSize = n
		}
	}
	if v := os.Getenv(EnvPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.PollInterval = d
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
}
