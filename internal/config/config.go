// Package config provides configuration types, defaults, and persistence for marquee.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/zjrosen/marquee/internal/flags"
	"github.com/zjrosen/marquee/internal/log"
	"github.com/zjrosen/marquee/internal/tracing"
)

// Storage backends accepted in StorageConfig.Backend.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds all configuration options for marquee.
type Config struct {
	Storage StorageConfig   `mapstructure:"storage"`
	Log     LogConfig       `mapstructure:"log"`
	Tracing tracing.Config  `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// StorageConfig selects and configures the slot store.
type StorageConfig struct {
	// Backend is "sqlite" (default) or "memory". The memory backend keeps
	// nothing across runs.
	Backend string `mapstructure:"backend"`

	// Path is the SQLite database file.
	// Default: ~/.marquee/marquee.db
	Path string `mapstructure:"path"`

	// Cache wraps the backend in a read-through cache.
	Cache bool `mapstructure:"cache"`

	// CacheTTL is how long a cached slot is served before it is reloaded.
	// Zero keeps entries until they are overwritten.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LogConfig holds debug log settings. Logging is only active with --debug or
// MARQUEE_DEBUG set.
type LogConfig struct {
	// Path is the log file. Default: debug.log in the working directory.
	Path string `mapstructure:"path"`

	// Level is the minimum level written: debug, info, warn or error.
	Level string `mapstructure:"level"`
}

// DefaultDatabasePath returns ~/.marquee/marquee.db, or marquee.db in the
// working directory if the home directory is unavailable.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "marquee.db"
	}
	return filepath.Join(home, ".marquee", "marquee.db")
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns ~/.config/marquee/traces/traces.jsonl or empty string if home dir unavailable.
func DefaultTracesFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "marquee", "traces", "traces.jsonl")
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Storage: StorageConfig{
			Backend:  BackendSQLite,
			Path:     DefaultDatabasePath(),
			Cache:    false,
			CacheTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Path:  "debug.log",
			Level: "debug",
		},
		Tracing: tracing.DefaultConfig(),
		Flags:   flags.Defaults(),
	}
}

// Validate checks every section and returns all problems joined.
func Validate(cfg Config) error {
	return errors.Join(
		ValidateStorage(cfg.Storage),
		ValidateLog(cfg.Log),
		ValidateTracing(cfg.Tracing),
		ValidateFlags(cfg.Flags),
	)
}

// ValidateStorage checks storage configuration for errors.
func ValidateStorage(storage StorageConfig) error {
	switch storage.Backend {
	case BackendSQLite:
		if storage.Path == "" {
			return fmt.Errorf("storage.path is required when backend is %q", BackendSQLite)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q", BackendSQLite, BackendMemory, storage.Backend)
	}
	if storage.CacheTTL < 0 {
		return fmt.Errorf("storage.cache_ttl must not be negative, got %s", storage.CacheTTL)
	}
	return nil
}

// ValidateLog checks log configuration for errors.
func ValidateLog(l LogConfig) error {
	if _, err := log.ParseLevel(l.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(t tracing.Config) error {
	if t.SampleRate < 0.0 || t.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", t.SampleRate)
	}

	if t.Exporter != "" {
		switch t.Exporter {
		case tracing.ExporterNone, tracing.ExporterFile, tracing.ExporterStdout, tracing.ExporterOTLP:
		default:
			return fmt.Errorf("tracing.exporter must be \"none\", \"file\", \"stdout\", or \"otlp\", got %q", t.Exporter)
		}
	}

	// Only validate path requirements when tracing is enabled
	if t.Enabled {
		if t.Exporter == tracing.ExporterFile && t.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if t.Exporter == tracing.ExporterOTLP && t.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateFlags rejects flag names marquee does not know, which are usually typos.
func ValidateFlags(fl map[string]bool) error {
	known := flags.Known()
	var unknown []string
	for name := range fl {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	slices.Sort(unknown)
	return fmt.Errorf("unknown flags %v (known: %v)", unknown, known)
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# Marquee Configuration

# Where the movie and person catalogs are stored
storage:
  backend: sqlite          # sqlite (default) or memory (nothing survives the process)
  # path: ~/.marquee/marquee.db
  cache: false             # Serve repeated reads from an in-memory cache
  cache_ttl: 10m           # How long cached slots are served (0 = until overwritten)

# Debug log (only written with --debug or MARQUEE_DEBUG=1)
log:
  path: debug.log
  level: debug             # debug, info, warn, error

# Feature flags
flags:
  # Refuse to delete a person who is still a director or actor of a movie.
  # When false, deleting a person deletes the movies they directed and
  # removes them from every cast.
  strict-references: false

  # Print a field diff after movie:update
  show-diff: true

# Tracing configuration
# tracing:
#   enabled: false                 # Enable/disable tracing (default: false)
#   exporter: file                 # Export backend: none, file, stdout, otlp (default: file)
#   file_path: ~/.config/marquee/traces/traces.jsonl  # Output file for file exporter
#   otlp_endpoint: localhost:4317  # OTLP collector endpoint (for otlp exporter)
#   sample_rate: 1.0               # Trace sampling rate 0.0-1.0 (default: 1.0)
#
# Example: Send traces to Jaeger via OTLP
# tracing:
#   enabled: true
#   exporter: otlp
#   otlp_endpoint: jaeger.internal:4317
#   sample_rate: 0.1  # Sample 10% of traces
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
