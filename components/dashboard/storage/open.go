package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-dashboard-builder/components/dashboard"
	"go.uber.org/zap"
)

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMongo  = "mongo"
	DriverRemote = "remote"
)

// Config selects and configures a backend. DSN meaning depends on the
// driver: a directory for file, a database path for sqlite, a redis:// URL,
// a mongodb:// URI or the base URL of a remote config service.
type Config struct {
	Driver     string
	DSN        string
	Database   string
	Collection string
	Prefix     string
	APIKey     string
	Logger     *zap.Logger
}

// Backend is an opened key-value backend plus its release func.
type Backend struct {
	dashboard.KeyValue
	Driver string
	close  func(context.Context) error
}

// Close releases connections held by the backend.
func (b Backend) Close(ctx context.Context) error {
	if b.close == nil {
		return nil
	}
	return b.close(ctx)
}

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = DriverMemory
	}
	switch driver {
	case DriverMemory:
		return Backend{KeyValue: NewMemory(), Driver: driver}, nil
	case DriverFile:
		kv, err := NewFile(cfg.DSN)
		if err != nil {
			return Backend{}, err
		}
		return Backend{KeyValue: kv, Driver: driver}, nil
	case DriverSQLite:
		kv, err := NewSQLite(cfg.DSN, cfg.Logger)
		if err != nil {
			return Backend{}, err
		}
		return Backend{KeyValue: kv, Driver: driver, close: func(context.Context) error { return kv.Close() }}, nil
	case DriverRedis:
		kv, err := DialRedis(ctx, cfg.DSN, cfg.Prefix)
		if err != nil {
			return Backend{}, err
		}
		return Backend{KeyValue: kv, Driver: driver, close: func(context.Context) error { return kv.Close() }}, nil
	case DriverMongo:
		kv, client, err := DialMongo(ctx, cfg.DSN, cfg.Database, cfg.Collection)
		if err != nil {
			return Backend{}, err
		}
		return Backend{KeyValue: kv, Driver: driver, close: client.Disconnect}, nil
	case DriverRemote:
		kv, err := NewRemote(RemoteConfig{BaseURL: cfg.DSN, APIKey: cfg.APIKey})
		if err != nil {
			return Backend{}, err
		}
		return Backend{KeyValue: kv, Driver: driver}, nil
	default:
		return Backend{}, fmt.Errorf("storage: unknown driver %q", cfg.Driver)
	}
}
