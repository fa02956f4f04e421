// Package config holds the server configuration and its loader.
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logging  LoggingConfig  `mapstructure:"logging" yaml:"logging"`
	Search   SearchConfig   `mapstructure:"search" yaml:"search"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	History  HistoryConfig  `mapstructure:"history" yaml:"history"`
	Tracing  TracingConfig  `mapstructure:"tracing" yaml:"tracing"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gt=0"`
}

// DatabaseConfig locates the SQLite database. ":memory:" keeps everything in
// memory.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// SearchConfig holds the optimizer defaults. Requests may override the
// strategy and time limit.
type SearchConfig struct {
	Strategy  string          `mapstructure:"strategy" yaml:"strategy" validate:"oneof=best-first beam memo"`
	TimeLimit time.Duration   `mapstructure:"time_limit" yaml:"time_limit" validate:"gt=0"`
	KeyPolicy string          `mapstructure:"key_policy" yaml:"key_policy" validate:"oneof=history-length resources full-history"`
	Parallel  bool            `mapstructure:"parallel" yaml:"parallel"`
	Workers   int             `mapstructure:"workers" yaml:"workers" validate:"gte=0"`
	BestFirst BestFirstConfig `mapstructure:"best_first" yaml:"best_first"`
	Beam      BeamConfig      `mapstructure:"beam" yaml:"beam"`
	Memo      MemoConfig      `mapstructure:"memo" yaml:"memo"`
}

// BestFirstConfig bounds the best-first search.
type BestFirstConfig struct {
	MaxNodes   int `mapstructure:"max_nodes" yaml:"max_nodes" validate:"gt=0"`
	MaxActions int `mapstructure:"max_actions" yaml:"max_actions" validate:"gt=0"`
}

// BeamConfig bounds the beam search.
type BeamConfig struct {
	Width int `mapstructure:"width" yaml:"width" validate:"gt=0"`
	Depth int `mapstructure:"depth" yaml:"depth" validate:"gt=0"`
}

// MemoConfig bounds the memoized recursive search.
type MemoConfig struct {
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth" validate:"gt=0"`
}

// CacheConfig sizes the response cache. Zero disables it.
type CacheConfig struct {
	Size int `mapstructure:"size" yaml:"size" validate:"gte=0"`
}

// HistoryConfig controls run recording.
type HistoryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Keep is how many runs survive pruning. Zero keeps everything.
	Keep int `mapstructure:"keep" yaml:"keep" validate:"gte=0"`
}

// TracingConfig controls OpenTelemetry span export. Disabled tracing still
// records spans in-process but exports nothing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Exporter    string  `mapstructure:"exporter" yaml:"exporter" validate:"oneof=stdout noop"`
	ServiceName string  `mapstructure:"service_name" yaml:"service_name" validate:"required"`
	SampleRate  float64 `mapstructure:"sample_rate" yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			AllowedOrigins:  []string{"*"},
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    75 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path: "crafting.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Search: SearchConfig{
			Strategy:  "beam",
			TimeLimit: 10 * time.Second,
			KeyPolicy: "history-length",
			Parallel:  true,
			BestFirst: BestFirstConfig{
				MaxNodes:   100000,
				MaxActions: 90,
			},
			Beam: BeamConfig{
				Width: 1000,
				Depth: 30,
			},
			Memo: MemoConfig{
				MaxDepth: 50,
			},
		},
		Cache: CacheConfig{
			Size: 256,
		},
		History: HistoryConfig{
			Enabled: true,
			Keep:    1000,
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			ServiceName: "crafting-macro-server",
			SampleRate:  1,
		},
	}
}
