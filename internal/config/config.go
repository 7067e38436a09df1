// Package config loads and validates pipeline configuration from
// environment variables and an optional YAML file. Configuration errors
// are fatal at construction time, before any record is processed.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"churnctl/internal/risk"
)

// envPrefix namespaces all environment overrides (CHURN_PIPELINE_SEED,
// CHURN_RISK_HIGH, ...).
const envPrefix = "CHURN"

// Config is the complete pipeline configuration.
type Config struct {
	Pipeline PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Model    ModelConfig     `yaml:"model" envconfig:"MODEL"`
	Risk     risk.Thresholds `yaml:"risk" envconfig:"RISK"`
	Logging  LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths    PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// PipelineConfig tunes the cleaning and feature stages.
type PipelineConfig struct {
	Seed                 int64   `yaml:"seed" envconfig:"SEED" default:"42"`
	TrainRatio           float64 `yaml:"train_ratio" envconfig:"TRAIN_RATIO" default:"0.8" validate:"gt=0,lt=1"`
	IQRMultiplier        float64 `yaml:"iqr_multiplier" envconfig:"IQR_MULTIPLIER" default:"1.5" validate:"gt=0"`
	CorrelationThreshold float64 `yaml:"correlation_threshold" envconfig:"CORRELATION_THRESHOLD" default:"0.95" validate:"gt=0,lte=1"`
	Workers              int     `yaml:"workers" envconfig:"WORKERS" default:"0" validate:"gte=0"`
	TopDrivers           int     `yaml:"top_drivers" envconfig:"TOP_DRIVERS" default:"6" validate:"gt=0"`
}

// ModelConfig tunes the reference trainer.
type ModelConfig struct {
	LearningRate float64 `yaml:"learning_rate" envconfig:"LEARNING_RATE" default:"0.1" validate:"gt=0"`
	Epochs       int     `yaml:"epochs" envconfig:"EPOCHS" default:"400" validate:"gt=0"`
	L2           float64 `yaml:"l2" envconfig:"L2" default:"0.001" validate:"gte=0"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/churnctl.log"`
}

// PathsConfig contains file system paths.
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" default:"data/out"`
}

// Load builds configuration from defaults, an optional YAML file and
// environment overrides, then validates it.
func Load(configFile string) (*Config, error) {
	var cfg Config

	// Environment and declared defaults first; a config file, when
	// given, overrides both.
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config from env: %w", err)
	}

	if configFile != "" {
		if err := loadFromFile(configFile, &cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate enforces both the declarative rules and the cross-field
// invariants (tier threshold ordering).
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if err := c.Risk.Validate(); err != nil {
		return err
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
