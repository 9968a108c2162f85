// Package storage provides the persistence backends the task store writes
// through to: memory, JSON files, Redis, SQLite and PostgreSQL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/crypto"
	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/database/postgres"
	_ "github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/taskglitch/internal/tracker/application/store"
)

// KeyMaxLength is the maximum length of a storage key.
const KeyMaxLength = 256

var (
	// ErrNotFound is returned by Get for an absent key.
	ErrNotFound = store.ErrKeyNotFound
	// ErrInvalidKey is returned for empty or oversized keys.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Driver selects a backend.
type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverFile     Driver = "file"
	DriverRedis    Driver = "redis"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Drivers lists the supported backends.
func Drivers() []Driver {
	return []Driver{DriverMemory, DriverFile, DriverRedis, DriverSQLite, DriverPostgres}
}

// Backend is a Storage that can be health-checked and closed.
type Backend interface {
	store.Storage
	Ping(ctx context.Context) error
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Driver        Driver
	DataDir       string
	RedisURL      string
	Namespace     string
	DatabaseURL   string
	SQLitePath    string
	MaxConns      int
	EncryptionKey string // base64 AES-256 key; empty disables encryption
}

// Open creates the configured backend.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	backend, err := open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.EncryptionKey != "" {
		enc, err := crypto.NewAESGCMFromBase64Key(cfg.EncryptionKey)
		if err != nil {
			_ = backend.Close()
			return nil, fmt.Errorf("invalid storage encryption key: %w", err)
		}
		backend = NewEncryptedStorage(backend, enc)
	}

	logger.InfoContext(ctx, "storage opened",
		"driver", cfg.Driver,
		"encrypted", cfg.EncryptionKey != "",
	)
	return backend, nil
}

func open(ctx context.Context, cfg Config) (Backend, error) {
	switch cfg.Driver {
	case DriverMemory:
		return NewMemoryStorage(), nil
	case DriverFile, "":
		return NewFileStorage(cfg.DataDir)
	case DriverRedis:
		return NewRedisStorage(ctx, cfg.RedisURL, cfg.Namespace)
	case DriverSQLite:
		conn, err := database.NewConnection(ctx, database.Config{
			Driver:     database.DriverSQLite,
			SQLitePath: cfg.SQLitePath,
		})
		if err != nil {
			return nil, err
		}
		return NewSQLStorage(ctx, conn)
	case DriverPostgres:
		conn, err := database.NewConnection(ctx, database.Config{
			Driver:   database.DriverPostgres,
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.MaxConns,
		})
		if err != nil {
			return nil, err
		}
		return NewSQLStorage(ctx, conn)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

func validateKey(key string) error {
	if key == "" || len(key) > KeyMaxLength {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return nil
}
