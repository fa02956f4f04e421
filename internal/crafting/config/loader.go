package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
)

// EnvPrefix prefixes environment overrides, e.g. CRAFTING_SEARCH_STRATEGY.
const EnvPrefix = "CRAFTING"

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads the configuration file at path on top of the defaults. Keys
// missing from the file keep their default values, and CRAFTING_* variables
// override both.
func Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.MergeInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return decode(v)
}

// LoadWithDefaults loads configuration from the specified file path.
// If the file doesn't exist, returns default configuration.
func LoadWithDefaults(path string) (*Config, error) {
	if path == "" {
		return loadDefaults()
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return loadDefaults()
	}
	return Load(path)
}

func loadDefaults() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// WriteDefault writes the default configuration as YAML to path. An existing
// file is left alone unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validate.New("mapstructure").Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// newViper returns a viper instance seeded with the defaults so that every
// key is known to the environment binding.
func newViper() (*viper.Viper, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("marshaling default config: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, fmt.Errorf("reading default config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	interpolate(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// interpolate expands ${VAR} references in the string settings.
func interpolate(cfg *Config) {
	for _, s := range []*string{
		&cfg.Server.Addr,
		&cfg.Database.Path,
		&cfg.Logging.Level,
		&cfg.Logging.Format,
		&cfg.Search.Strategy,
		&cfg.Search.KeyPolicy,
		&cfg.Tracing.Exporter,
		&cfg.Tracing.ServiceName,
	} {
		*s = interpolateString(*s)
	}
	for i, o := range cfg.Server.AllowedOrigins {
		cfg.Server.AllowedOrigins[i] = interpolateString(o)
	}
}

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as written.
func interpolateString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val := os.Getenv(name); val != "" {
			return val
		}
		return match
	})
}
