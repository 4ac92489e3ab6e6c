package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"exampulse/internal/errors"
)

// Data source kinds
const (
	SourceFixture  = "fixture"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Data      DataConfig
	Database  DatabaseConfig
	Display   DisplayConfig
	Profiling ProfilingConfig
	LogLevel  string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// DataConfig selects and tunes the record source
type DataConfig struct {
	Source       string
	File         string
	LoadTimeout  time.Duration
	FixtureDelay time.Duration
	CacheEnabled bool
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// DisplayConfig controls presentation rounding
type DisplayConfig struct {
	Precision int
}

// ProfilingConfig holds the ops server settings (pprof and metrics)
type ProfilingConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:    *loadServerConfig(),
		Data:      *loadDataConfig(),
		Database:  DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Display:   DisplayConfig{Precision: getEnvIntOrDefault("DISPLAY_PRECISION", 2)},
		Profiling: *loadProfilingConfig(),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadDataConfig() *DataConfig {
	return &DataConfig{
		Source:       strings.ToLower(getEnvOrDefault("DATA_SOURCE", SourceFixture)),
		File:         getEnvOrDefault("DATA_FILE", ""),
		LoadTimeout:  getEnvDurationOrDefault("LOAD_TIMEOUT", 5*time.Second),
		FixtureDelay: getEnvDurationOrDefault("FIXTURE_DELAY", 0),
		CacheEnabled: getEnvBoolOrDefault("CACHE_ENABLED", true),
	}
}

func loadProfilingConfig() *ProfilingConfig {
	return &ProfilingConfig{
		Port:    getEnvOrDefault("PPROF_PORT", "6060"),
		Enabled: getEnvBoolOrDefault("PPROF_ENABLED", false),
	}
}

func validateConfig(config *Config) error {
	switch config.Data.Source {
	case SourceFixture:
	case SourceFile:
		if config.Data.File == "" {
			return errors.ConfigInvalid("DATA_FILE is required when DATA_SOURCE=file")
		}
	case SourcePostgres:
		if config.Database.URL == "" {
			return errors.ConfigInvalid("DATABASE_URL is required when DATA_SOURCE=postgres")
		}
	default:
		return errors.ConfigInvalid("unknown DATA_SOURCE " + strconv.Quote(config.Data.Source))
	}
	if config.Data.LoadTimeout <= 0 {
		return errors.ConfigInvalid("LOAD_TIMEOUT must be positive")
	}
	if config.Display.Precision < 0 || config.Display.Precision > 6 {
		return errors.ConfigInvalid("DISPLAY_PRECISION must be between 0 and 6")
	}
	if config.Server.Port == "" {
		return errors.ConfigInvalid("PORT is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
