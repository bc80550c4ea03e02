// Package config loads the application configuration. Precedence, lowest to
// highest: built-in defaults, an optional YAML file, then GLIKOZ_* environment
// variables.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	yaml "gopkg.in/yaml.v2"

	"glikoz/internal/errors"
)

// EnvPrefix is the prefix for environment variable overrides,
// e.g. GLIKOZ_LOGGING_LEVEL=debug.
const EnvPrefix = "GLIKOZ"

// Config represents the complete application configuration
type Config struct {
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Report  ReportConfig  `yaml:"report" envconfig:"REPORT"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
}

// ReportConfig contains report generation configuration
type ReportConfig struct {
	Title            string  `yaml:"title" envconfig:"TITLE" validate:"required"`
	LowThreshold     float64 `yaml:"low_threshold" envconfig:"LOW_THRESHOLD" validate:"gt=0,gtfield=VeryLowThreshold"`
	VeryLowThreshold float64 `yaml:"very_low_threshold" envconfig:"VERY_LOW_THRESHOLD" validate:"gt=0"`
	HighThreshold    float64 `yaml:"high_threshold" envconfig:"HIGH_THRESHOLD" validate:"gt=0,gtfield=LowThreshold"`
	HbA1cWindowDays  int     `yaml:"hba1c_window_days" envconfig:"HBA1C_WINDOW_DAYS" validate:"min=1"`
	Precision        int     `yaml:"precision" envconfig:"PRECISION" validate:"min=0,max=6"`
	TimestampLayout  string  `yaml:"timestamp_layout" envconfig:"TIMESTAMP_LAYOUT" validate:"required"`
}

// Default returns the built-in configuration. Glucose thresholds follow the
// ADA consensus targets (70/54/180 mg/dL); rendered numbers use two decimal
// places.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/glikoz.log",
		},
		Report: ReportConfig{
			Title:            "Glikoz Report",
			LowThreshold:     70,
			VeryLowThreshold: 54,
			HighThreshold:    180,
			HbA1cWindowDays:  90,
			Precision:        2,
			TimestampLayout:  "2006-01-02 15:04",
		},
	}
}

// Load loads configuration from the given YAML file (skipped when the path is
// empty or the file does not exist) and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.NewConfigError(fmt.Sprintf("invalid config file %s", path), err)
			}
		case os.IsNotExist(err):
			// optional file, defaults apply
		default:
			return nil, errors.NewConfigError(fmt.Sprintf("cannot read config file %s", path), err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, errors.NewConfigError("failed to load config from environment", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks field constraints and threshold ordering.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.NewConfigError("config validation failed", err)
	}
	return nil
}
