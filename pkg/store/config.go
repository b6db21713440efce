package store

import (
	"database/sql"
	"fmt"

	// PostgreSQL driver for the SQL store.
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/lattice/pkg/hierarchy"
)

// Config selects and configures an edge store backend.
type Config struct {
	Type string // "memory", "postgres", "redis"

	// PostgreSQL config
	PostgresURL      string
	PostgresMaxConns int

	// Redis config
	RedisURL      string
	RedisPassword string
	RedisDB       int
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		Type:             "memory",
		PostgresMaxConns: 20,
		RedisDB:          -1,
	}
}

// New creates the edge store described by the config.
func New(cfg Config, log logrus.FieldLogger) (hierarchy.EdgeStore, error) {
	switch cfg.Type {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres connection: %w", err)
		}
		if cfg.PostgresMaxConns > 0 {
			db.SetMaxOpenConns(cfg.PostgresMaxConns)
		}
		if err := db.Ping(); err != nil {
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		return NewSQLStore(db, log), nil
	case "redis":
		return NewRedisStore(cfg.RedisURL, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.Type)
	}
}
