package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskglitch/internal/shared/infrastructure/migrations"
)

const (
	selectValueSQL = `SELECT value FROM kv_store WHERE key = ?`
	upsertValueSQL = `INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
)

// SQLStorage keeps values in the kv_store table of a SQLite or
// PostgreSQL database.
type SQLStorage struct {
	conn database.Connection
	now  func() time.Time
}

// NewSQLStorage applies migrations and takes ownership of conn.
func NewSQLStorage(ctx context.Context, conn database.Connection) (*SQLStorage, error) {
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to migrate %s storage: %w", conn.Driver(), err)
	}
	return &SQLStorage{conn: conn, now: time.Now}, nil
}

func (s *SQLStorage) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	var value []byte
	err := s.conn.QueryRow(ctx, s.conn.Driver().Rebind(selectValueSQL), key).Scan(&value)
	if database.IsNoRows(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if value == nil {
		value = []byte{}
	}

	var updatedAt any = s.now().UTC()
	if s.conn.Driver() == database.DriverSQLite {
		updatedAt = s.now().UTC().Format(time.RFC3339Nano)
	}

	if _, err := s.conn.Exec(ctx, s.conn.Driver().Rebind(upsertValueSQL), key, value, updatedAt); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStorage) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *SQLStorage) Close() error {
	return s.conn.Close()
}
