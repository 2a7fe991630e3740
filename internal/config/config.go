// Package config loads chartcsv settings from the environment and an
// optional YAML file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix prefixes every environment variable (e.g. CHARTCSV_URL).
const EnvPrefix = "CHARTCSV"

// Config represents the complete tool configuration.
type Config struct {
	// URL is the download endpoint the CSV is posted to.
	URL string `yaml:"url" envconfig:"URL" validate:"omitempty,url"`
	// DownloadLabel overrides the "Download CSV" menu label.
	DownloadLabel string `yaml:"download_label" envconfig:"DOWNLOAD_LABEL"`
	// Timeout bounds the outbound POST.
	Timeout time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"30s" validate:"gte=0"`
	// ServerAddr is the listen address of the download endpoint.
	ServerAddr string `yaml:"server_addr" envconfig:"SERVER_ADDR" default:":8080" validate:"required"`
	// MaxBodyBytes bounds posted forms on the download endpoint.
	MaxBodyBytes int64 `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" default:"10485760" validate:"gt=0"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

// Load reads the environment, merges the YAML file at path when it is not
// empty, and validates the result. Environment values take precedence.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		fileConfig, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg, os.LookupEnv)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs fills values not set in the environment from the file.
func mergeConfigs(fileConfig, envConfig Config, lookup func(string) (string, bool)) Config {
	unset := func(key string) bool {
		_, ok := lookup(EnvPrefix + "_" + key)
		return !ok
	}

	if unset("URL") && fileConfig.URL != "" {
		envConfig.URL = fileConfig.URL
	}
	if unset("DOWNLOAD_LABEL") && fileConfig.DownloadLabel != "" {
		envConfig.DownloadLabel = fileConfig.DownloadLabel
	}
	if unset("TIMEOUT") && fileConfig.Timeout != 0 {
		envConfig.Timeout = fileConfig.Timeout
	}
	if unset("SERVER_ADDR") && fileConfig.ServerAddr != "" {
		envConfig.ServerAddr = fileConfig.ServerAddr
	}
	if unset("MAX_BODY_BYTES") && fileConfig.MaxBodyBytes != 0 {
		envConfig.MaxBodyBytes = fileConfig.MaxBodyBytes
	}
	if unset("LOG_LEVEL") && fileConfig.LogLevel != "" {
		envConfig.LogLevel = fileConfig.LogLevel
	}
	return envConfig
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// SlogLevel returns the configured level as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
