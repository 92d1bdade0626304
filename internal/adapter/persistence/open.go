package persistence

import (
	"context"
	"fmt"
	"strings"

	"github.com/purochile/pcbot/internal/config"
	"github.com/purochile/pcbot/internal/ports"
	"github.com/purochile/pcbot/internal/store"
)

// Supported store drivers
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMemory   = "memory"
)

// Open builds the record backend selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig) (ports.RecordBackend, error) {
	switch strings.ToLower(cfg.Driver) {
	case DriverFile, "":
		return NewFileBackend(cfg.DataDir)
	case DriverSQLite, "sqlite3":
		return OpenSQLite(cfg.SQLitePath)
	case DriverPostgres, "postgresql":
		return OpenPostgres(ctx, cfg.DatabaseURL)
	case DriverRedis:
		return OpenRedis(ctx, cfg.RedisURL, cfg.RedisPrefix)
	case DriverMemory:
		return store.NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
