// Package backend selects and builds the document store implementation the
// rest of the system persists through.
package backend

import (
	"context"
	"fmt"

	"bilancio/internal/config"
	"bilancio/internal/docstore"
	"bilancio/internal/docstore/gcs"
)

// BackendType represents the document store backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
	GCSBackend    BackendType = "gcs"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, GCSBackend:
		return true
	default:
		return false
	}
}

// CleanupFunc releases backend resources on shutdown.
type CleanupFunc func() error

// Result contains the store instance and optional cleanup function.
type Result struct {
	Store   docstore.Store
	Cleanup CleanupFunc
}

// Factory creates document stores based on configuration.
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for store creation.
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// GCS specific
	GCS gcs.Config
}

// FromAppConfig converts the application config to backend config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DocBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DocBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		GCS: gcs.Config{
			Bucket:          appConfig.GCSBucket,
			Prefix:          appConfig.GCSPrefix,
			CredentialsFile: appConfig.GCSCredentialsFile,
			Endpoint:        appConfig.GCSEndpoint,
		},
	}, nil
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}

	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case GCSBackend:
		if c.GCS.Bucket == "" {
			return fmt.Errorf("GCS bucket is required for gcs backend")
		}
	case MemoryBackend:
		// Nothing to check.
	}

	return nil
}
