// Package config loads tally settings.
//
// Precedence, lowest to highest: Default(), the YAML file, TALLY_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/mmynk/tally/internal/session"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "tally.yaml"

// envPrefix is prepended to every environment variable name.
const envPrefix = "TALLY"

// Config is the top-level structure for tally.yaml.
type Config struct {
	// DatabasePath is the SQLite file holding the session and history.
	DatabasePath string `yaml:"database_path" envconfig:"DB_PATH"`

	// ArchiveOnDelete snapshots the session before a single item is removed.
	ArchiveOnDelete bool `yaml:"archive_on_delete" envconfig:"ARCHIVE_ON_DELETE"`

	// NegativeQuantity is "allow" or "clamp".
	NegativeQuantity string `yaml:"negative_quantity" envconfig:"NEGATIVE_QUANTITY"`

	// AutosaveDebounce delays session writes so bursts collapse into one.
	AutosaveDebounce time.Duration `yaml:"autosave_debounce" envconfig:"AUTOSAVE_DEBOUNCE"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL"`

	// MetricsFile, when set, receives a Prometheus text dump on exit.
	MetricsFile string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		DatabasePath:     "./data/tally.db",
		ArchiveOnDelete:  true,
		NegativeQuantity: "allow",
		AutosaveDebounce: 0,
		LogLevel:         "warn",
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := readFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// Validate checks values that cannot be expressed by the field types.
func (c *Config) Validate() error {
	if _, err := c.QuantityPolicy(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.AutosaveDebounce < 0 {
		return fmt.Errorf("invalid config: autosave_debounce must not be negative")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("invalid config: database_path is required")
	}
	return nil
}

// QuantityPolicy parses NegativeQuantity.
func (c *Config) QuantityPolicy() (session.QuantityPolicy, error) {
	return session.ParseQuantityPolicy(c.NegativeQuantity)
}

// Write saves cfg as YAML to path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
