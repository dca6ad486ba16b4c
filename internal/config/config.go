// Package config loads the analysis configuration from defaults, an
// optional YAML file, and environment variables (prefix TAXI), in that
// order of increasing precedence.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the complete configuration of a tip-report run.
type Config struct {
	Inputs    InputsConfig    `yaml:"inputs" envconfig:"INPUTS"`
	Selection SelectionConfig `yaml:"selection" envconfig:"SELECTION"`
	Ridge     RidgeConfig     `yaml:"ridge" envconfig:"RIDGE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Charts    bool            `yaml:"charts" envconfig:"CHARTS"`
}

// InputsConfig names the tabular input files.
type InputsConfig struct {
	TrainingFile   string `yaml:"training_file" envconfig:"TRAINING_FILE" validate:"required"`
	EvaluationFile string `yaml:"evaluation_file" envconfig:"EVALUATION_FILE" validate:"required"`
	ZoneLookupFile string `yaml:"zone_lookup_file" envconfig:"ZONE_LOOKUP_FILE"`
}

// SelectionConfig controls the predictor subset search.
type SelectionConfig struct {
	MaxTerms int    `yaml:"max_terms" envconfig:"MAX_TERMS" validate:"min=1,max=32"`
	Target   string `yaml:"target" envconfig:"TARGET" validate:"required"`
}

// RidgeConfig controls penalty selection by cross-validation.
type RidgeConfig struct {
	Folds int `yaml:"folds" envconfig:"FOLDS" validate:"min=2"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Selection: SelectionConfig{
			MaxTerms: 8,
			Target:   "tip_amount",
		},
		Ridge: RidgeConfig{
			Folds: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the effective configuration. The YAML file is optional;
// environment variables override it. Callers apply any flag overrides
// and then Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := envconfig.Process("TAXI", &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}
	return &cfg, nil
}

// Validate checks the assembled configuration.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
