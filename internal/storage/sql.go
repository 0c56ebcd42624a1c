package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type dialect string

const (
	dialectMySQL  dialect = "mysql"
	dialectSQLite dialect = "sqlite"
)

const (
	getItemQuery    = `SELECT value FROM local_storage WHERE namespace = ? AND storage_key = ?`
	removeItemQuery = `DELETE FROM local_storage WHERE namespace = ? AND storage_key = ?`

	setItemMySQL = `INSERT INTO local_storage (namespace, storage_key, value) VALUES (?, ?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value)`
	setItemSQLite = `INSERT INTO local_storage (namespace, storage_key, value) VALUES (?, ?, ?)
		ON CONFLICT(namespace, storage_key) DO UPDATE SET value = excluded.value, updated_at = datetime('now')`
)

// sqlStorage implements Storage on a local_storage table.
// Items are scoped by namespace so several shells can share one database.
type sqlStorage struct {
	db        *sql.DB
	dialect   dialect
	namespace string
	logger    *zap.Logger
}

// newSQLStorage wraps an already migrated database
func newSQLStorage(db *sql.DB, d dialect, namespace string, logger *zap.Logger) *sqlStorage {
	return &sqlStorage{
		db:        db,
		dialect:   d,
		namespace: namespace,
		logger:    logger,
	}
}

// OpenSQLite opens (or creates) a SQLite database at path and runs migrations
func OpenSQLite(ctx context.Context, path, namespace string, logger *zap.Logger) (*sqlStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite storage path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
	}
	// A single writer avoids "database is locked" between concurrent mutations
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set sqlite busy timeout: %w", err)
	}
	if err := runMigrations(db, dialectSQLite); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStorage(db, dialectSQLite, namespace, logger), nil
}

// OpenMySQL connects to the MySQL database described by dsn and runs migrations
func OpenMySQL(ctx context.Context, dsn, namespace string, logger *zap.Logger) (*sqlStorage, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := runMigrations(db, dialectMySQL); err != nil {
		_ = db.Close()
		return nil, err
	}
	return newSQLStorage(db, dialectMySQL, namespace, logger), nil
}

// GetItem is a Storage implementation reading one row of the local_storage table.
func (s *sqlStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getItemQuery, s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Error("failed to query storage item", zap.String("key", key), zap.Error(err))
		return "", false, fmt.Errorf("failed to query storage item: %w", err)
	}
	return value, true, nil
}

// SetItem is a Storage implementation upserting one row of the local_storage table.
func (s *sqlStorage) SetItem(ctx context.Context, key, value string) error {
	query := setItemSQLite
	if s.dialect == dialectMySQL {
		query = setItemMySQL
	}
	if _, err := s.db.ExecContext(ctx, query, s.namespace, key, value); err != nil {
		s.logger.Error("failed to store storage item", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to store storage item: %w", err)
	}
	return nil
}

// RemoveItem is a Storage implementation deleting one row of the local_storage table.
func (s *sqlStorage) RemoveItem(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, removeItemQuery, s.namespace, key); err != nil {
		s.logger.Error("failed to remove storage item", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to remove storage item: %w", err)
	}
	return nil
}

func (s *sqlStorage) Close() error {
	return s.db.Close()
}
