// Package storage provides the durable key/value storage the session is mirrored to.
//
// It plays the role a browser's local storage plays for a web client: a small set
// of string values keyed by name that survives restarts. Several backends are
// available; Open picks one from configuration.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/novelplatform/novelshell/internal/config"
	"go.uber.org/zap"
)

// ErrUnknownDriver is returned by Open for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown storage driver")

// Storage is the interface that wraps durable key/value access.
type Storage interface {
	// Method GetItem retrieves the value stored under key.
	//
	// The boolean result is false when no value is stored under key; in that case the returned string is empty.
	// If the backend fails, the error will be returned together with empty string and "false" values.
	GetItem(ctx context.Context, key string) (string, bool, error)
	// Method SetItem stores value under key, replacing any previous value.
	SetItem(ctx context.Context, key, value string) error
	// Method RemoveItem deletes the value stored under key.
	//
	// Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
	// Method Close releases resources held by the backend.
	Close() error
}

// Open creates the storage backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Storage, error) {
	var (
		store Storage
		err   error
	)
	switch cfg.Driver {
	case config.DriverFile:
		var local *localStorage
		local, err = NewLocalStorage(cfg.Path, logger)
		store = local
	case config.DriverMemory:
		store = NewMemoryStorage()
	case config.DriverSQLite:
		var db *sqlStorage
		db, err = OpenSQLite(ctx, cfg.Path, cfg.Namespace, logger)
		store = db
	case config.DriverMySQL:
		var db *sqlStorage
		db, err = OpenMySQL(ctx, cfg.DSN, cfg.Namespace, logger)
		store = db
	case config.DriverRedis:
		var rdb *redisStorage
		rdb, err = OpenRedis(ctx, cfg.Redis, cfg.Namespace, logger)
		store = rdb
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("durable storage opened", zap.String("driver", cfg.Driver))
	return store, nil
}
