package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLite keeps values in a key/value table of a local database file.
type SQLite struct {
	db     *sql.DB
	logger *zap.Logger
}

var _ dashboard.KeyValue = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at path and migrates the table.
func NewSQLite(path string, logger *zap.Logger) (*SQLite, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("storage: create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("storage: open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	store := &SQLite{
		db:     db,
		logger: logger.With(zap.String("component", "sqlite_store")),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migrate database: %w", err)
	}
	store.logger.Info("dashboard database initialized", zap.String("path", path))
	return store, nil
}

func (s *SQLite) migrate() error {
	const schema = `
		CREATE TABLE IF NOT EXISTS dashboard_kv (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM dashboard_kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: select %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	const query = `
		INSERT INTO dashboard_kv (key, value, updated_at)
		VALUES (?, ?, datetime('now'))
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("storage: upsert %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
