package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/lattice/pkg/store"
)

// Config holds all application configuration
type Config struct {
	// Store configuration
	Store store.Config

	// Hierarchy configuration
	Hierarchy HierarchyConfig

	// Logging
	LogLevel logrus.Level
}

// HierarchyConfig holds hierarchy core settings
type HierarchyConfig struct {
	// ClosureCacheSize caps the inherited-closure memo cache.
	ClosureCacheSize int

	// ClosureCacheTTL bounds how long a memoized closure may be served.
	ClosureCacheTTL time.Duration

	// RefreshSchedule is a cron expression for periodic cache
	// invalidation; empty disables the refresher.
	RefreshSchedule string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Store:     loadStoreConfig(),
		Hierarchy: loadHierarchyConfig(),
		LogLevel:  parseLogLevel(getEnv("LATTICE_LOG_LEVEL", "info")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadStoreConfig loads edge store configuration from environment
func loadStoreConfig() store.Config {
	cfg := store.DefaultConfig()

	if storeType := getEnv("LATTICE_STORE_TYPE", ""); storeType != "" {
		cfg.Type = storeType
	}
	if pgURL := getEnv("LATTICE_POSTGRES_URL", ""); pgURL != "" {
		cfg.PostgresURL = pgURL
	}
	if maxConns := getEnvInt("LATTICE_POSTGRES_MAX_CONNS", 0); maxConns > 0 {
		cfg.PostgresMaxConns = maxConns
	}
	if redisURL := getEnv("LATTICE_REDIS_URL", ""); redisURL != "" {
		cfg.RedisURL = redisURL
	}
	if redisPassword := getEnv("LATTICE_REDIS_PASSWORD", ""); redisPassword != "" {
		cfg.RedisPassword = redisPassword
	}
	if redisDB := getEnvInt("LATTICE_REDIS_DB", -1); redisDB >= 0 {
		cfg.RedisDB = redisDB
	}

	return cfg
}

// loadHierarchyConfig loads hierarchy core configuration from environment
func loadHierarchyConfig() HierarchyConfig {
	return HierarchyConfig{
		ClosureCacheSize: getEnvInt("LATTICE_CLOSURE_CACHE_SIZE", 1024),
		ClosureCacheTTL:  getEnvDuration("LATTICE_CLOSURE_CACHE_TTL", 5*time.Minute),
		RefreshSchedule:  getEnv("LATTICE_CACHE_REFRESH_SCHEDULE", ""),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Store.Type {
	case "", "memory":
	case "postgres":
		if c.Store.PostgresURL == "" {
			return fmt.Errorf("postgres URL is required for postgres store")
		}
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("redis URL is required for redis store")
		}
	default:
		return fmt.Errorf("invalid store type: %s (must be memory, postgres, or redis)", c.Store.Type)
	}

	if c.Hierarchy.ClosureCacheSize < 0 {
		return fmt.Errorf("closure cache size must not be negative")
	}

	return nil
}

// parseLogLevel parses a log level string
func parseLogLevel(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
