// Package config loads engine configuration from defaults, an optional
// config file and FORGE_ prefixed environment variables, in ascending
// precedence. A .env file in the working directory is honored before the
// environment is read.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all tunables for the protocol and the engine.
type Config struct {
	LogLevel  string `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"oneof=json text"`

	TickInterval        time.Duration `mapstructure:"tick_interval" validate:"gt=0"`
	SignOffPollInterval time.Duration `mapstructure:"sign_off_poll_interval" validate:"gt=0"`
	SignOffTimeoutMin   int           `mapstructure:"sign_off_timeout_minutes" validate:"gt=0"`

	MaxIterations       int     `mapstructure:"max_iterations" validate:"gt=0"`
	MaxParallel         int     `mapstructure:"max_parallel" validate:"gt=0"`
	EscalationThreshold float64 `mapstructure:"escalation_threshold" validate:"gte=0,lte=1"`

	ArtifactDir string `mapstructure:"artifact_dir"`

	Model ModelConfig `mapstructure:"model"`
}

// ModelConfig selects the LLM backend for model-backed agents. The API key
// is read from the provider's conventional environment variable when left
// empty.
type ModelConfig struct {
	Provider string `mapstructure:"provider" validate:"omitempty,oneof=anthropic openai"`
	Name     string `mapstructure:"name"`
	APIKey   string `mapstructure:"api_key"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:            "info",
		LogFormat:           "json",
		TickInterval:        25 * time.Millisecond,
		SignOffPollInterval: time.Second,
		SignOffTimeoutMin:   60,
		MaxIterations:       5,
		MaxParallel:         4,
		EscalationThreshold: 0.5,
	}
}

// Load builds the configuration. When path is non-empty it names an
// explicit config file; otherwise forge.yaml in the working directory is
// used if present. Missing files are not an error, invalid values are.
func Load(path string) (*Config, error) {
	// Populate the process environment from .env before viper reads it.
	_ = godotenv.Load()

	v := viper.New()
	defaults := Default()
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("log_format", defaults.LogFormat)
	v.SetDefault("tick_interval", defaults.TickInterval)
	v.SetDefault("sign_off_poll_interval", defaults.SignOffPollInterval)
	v.SetDefault("sign_off_timeout_minutes", defaults.SignOffTimeoutMin)
	v.SetDefault("max_iterations", defaults.MaxIterations)
	v.SetDefault("max_parallel", defaults.MaxParallel)
	v.SetDefault("escalation_threshold", defaults.EscalationThreshold)
	v.SetDefault("artifact_dir", defaults.ArtifactDir)
	v.SetDefault("model.provider", "")
	v.SetDefault("model.name", "")
	v.SetDefault("model.api_key", "")

	v.SetEnvPrefix("FORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("forge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}
