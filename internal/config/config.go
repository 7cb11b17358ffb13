// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Database drivers accepted by DatabaseDriver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config represents settings that can be loaded from a JSON or YAML file.
// All fields are optional; empty values are filled from flags, environment or defaults.
type Config struct {
	Port           int    `json:"port,omitempty" yaml:"port,omitempty"`
	DatabaseDriver string `json:"database_driver,omitempty" yaml:"database_driver,omitempty"` // sqlite or postgres
	DatabaseURL    string `json:"database_url,omitempty" yaml:"database_url,omitempty"`       // PostgreSQL connection URL
	SQLitePath     string `json:"sqlite_path,omitempty" yaml:"sqlite_path,omitempty"`
	LogLevel       string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	CORSOrigin     string `json:"cors_origin,omitempty" yaml:"cors_origin,omitempty"`
	MaxUploadMB    int    `json:"max_upload_mb,omitempty" yaml:"max_upload_mb,omitempty"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:           4000,
		DatabaseDriver: DriverSQLite,
		SQLitePath:     "interntrack.sqlite",
		LogLevel:       "info",
		CORSOrigin:     "*",
		MaxUploadMB:    5,
	}
}

// FromEnv reads the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Port:           getEnvInt("PORT", 0),
		DatabaseDriver: os.Getenv("DATABASE_DRIVER"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		SQLitePath:     os.Getenv("SQLITE_PATH"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		CORSOrigin:     os.Getenv("CORS_ORIGIN"),
		MaxUploadMB:    getEnvInt("MAX_UPLOAD_MB", 0),
	}
}

// LoadConfig loads configuration from a .json, .yaml or .yml file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' out of range: %d", c.Port)
	}
	if c.MaxUploadMB < 0 {
		return fmt.Errorf("config error: 'max_upload_mb' must be non-negative")
	}

	switch c.DatabaseDriver {
	case "", DriverSQLite:
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config error: 'database_url' is required for the postgres driver")
		}
	default:
		return fmt.Errorf("config error: unknown database_driver %q", c.DatabaseDriver)
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.DatabaseDriver == "" {
		result.DatabaseDriver = defaults.DatabaseDriver
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SQLitePath == "" {
		result.SQLitePath = defaults.SQLitePath
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.CORSOrigin == "" {
		result.CORSOrigin = defaults.CORSOrigin
	}
	if result.MaxUploadMB == 0 {
		result.MaxUploadMB = defaults.MaxUploadMB
	}

	return result
}
