package backend

import (
	"context"
	"fmt"
	"log/slog"

	"bilancio/internal/docstore/gcs"
	"bilancio/internal/docstore/memory"
	"bilancio/internal/docstore/sqlite"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateStore implements Factory.CreateStore
func (f *DefaultFactory) CreateStore(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case SQLiteBackend:
		return f.createSQLiteStore(config)
	case GCSBackend:
		return f.createGCSStore(ctx, config)
	case MemoryBackend:
		return f.createMemoryStore()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createSQLiteStore(config Config) (*Result, error) {
	if err := sqlite.RunMigrations(config.SQLiteDBPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := sqlite.New(config.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("initialize SQLite store: %w", err)
	}

	f.logger.Info("Initialized SQLite document store", "db_path", config.SQLiteDBPath)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createGCSStore(ctx context.Context, config Config) (*Result, error) {
	store, err := gcs.New(ctx, config.GCS)
	if err != nil {
		return nil, fmt.Errorf("initialize GCS store: %w", err)
	}

	f.logger.Info("Initialized GCS document store",
		"bucket", config.GCS.Bucket,
		"prefix", config.GCS.Prefix)

	return &Result{Store: store, Cleanup: store.Close}, nil
}

func (f *DefaultFactory) createMemoryStore() (*Result, error) {
	f.logger.Info("Initialized in-memory document store")
	return &Result{Store: memory.New()}, nil
}
