// Package config provides unified configuration loading for samplespace.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// DirName is the per-user and per-project state directory name.
const DirName = ".samplespace"

// Config contains all samplespace configuration settings.
type Config struct {
	// Sampling holds the defaults applied to every estimation.
	Sampling SamplingConfig `json:"sampling" yaml:"sampling"`

	// Logging contains settings for operational and run logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// History configures the estimation run history store.
	History HistoryConfig `json:"history" yaml:"history"`
}

// SamplingConfig configures the estimation engine.
type SamplingConfig struct {
	// Iterations is the default number of reruns per estimate.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Seed makes runs reproducible. 0 draws a fresh seed per run.
	Seed uint64 `json:"seed" yaml:"seed"`

	// Workers > 1 spreads each estimate over that many goroutines.
	Workers int `json:"workers" yaml:"workers"`
}

// LoggingConfig configures samplespace's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run logging to .samplespace/runs.jsonl.
	Level string `json:"level" yaml:"level"`
}

// HistoryConfig configures the SQLite run history.
type HistoryConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the database file. Empty means ~/.samplespace/history.db.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Sampling: SamplingConfig{
			Iterations: 10000,
			Seed:       0,
			Workers:    1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultPath returns ~/.samplespace/config.yaml.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.samplespace/config.yaml -> environment variables
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath is Load with an explicit config file. An empty path falls back
// to the default location, which may be absent; an explicit path must exist.
func LoadWithPath(path string) (*Config, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	} else if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	config.History.Path = os.ExpandEnv(config.History.Path)

	return config, nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Sampling.Iterations <= 0 {
		return fmt.Errorf("iterations must be positive, got %d", c.Sampling.Iterations)
	}

	if c.Sampling.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Sampling.Workers)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// HistoryPath returns the configured history database, defaulting to
// ~/.samplespace/history.db.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, DirName, "history.db"), nil
}

// Keys lists the dot-notation keys understood by Get and Set.
func Keys() []string {
	return []string{
		"sampling.iterations",
		"sampling.seed",
		"sampling.workers",
		"logging.level",
		"history.enabled",
		"history.path",
	}
}

// Get retrieves a configuration value by dot-notation key.
func (c *Config) Get(key string) (any, bool) {
	switch key {
	case "sampling.iterations":
		return c.Sampling.Iterations, true
	case "sampling.seed":
		return c.Sampling.Seed, true
	case "sampling.workers":
		return c.Sampling.Workers, true
	case "logging.level":
		return c.Logging.Level, true
	case "history.enabled":
		return c.History.Enabled, true
	case "history.path":
		return c.History.Path, true
	default:
		return nil, false
	}
}

// Set parses value and stores it under a dot-notation key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "sampling.iterations":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid iterations: %s (must be a positive integer)", value)
		}
		c.Sampling.Iterations = n
	case "sampling.seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %s (must be a non-negative integer)", value)
		}
		c.Sampling.Seed = n
	case "sampling.workers":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid workers: %s (must be a positive integer)", value)
		}
		c.Sampling.Workers = n
	case "logging.level":
		switch value {
		case "info", "debug", "trace":
		default:
			return fmt.Errorf("invalid log level: %s (valid: info, debug, trace)", value)
		}
		c.Logging.Level = value
	case "history.enabled":
		c.History.Enabled = value == "true" || value == "1"
	case "history.path":
		c.History.Path = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numbers are ignored.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("SAMPLESPACE_ITERATIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sampling.Iterations = n
		}
	}

	if v := os.Getenv("SAMPLESPACE_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Sampling.Seed = n
		}
	}

	if v := os.Getenv("SAMPLESPACE_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Sampling.Workers = n
		}
	}

	if v := os.Getenv("SAMPLESPACE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("SAMPLESPACE_HISTORY"); v != "" {
		config.History.Enabled = v == "true" || v == "1"
	}
}
