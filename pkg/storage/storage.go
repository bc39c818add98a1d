// Package storage persists opaque blobs under string keys.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/docpages/pkg/lifecycle"
)

var (
	ErrNotFound         = errors.New("storage: key not found")
	ErrPermissionDenied = errors.New("storage: permission denied")
	// ErrInvalidKey covers empty keys and path traversal attempts.
	ErrInvalidKey = errors.New("storage: invalid key")
)

// System is the blob persistence contract.
type System interface {
	// Store writes data at key, replacing existing content atomically.
	Store(ctx context.Context, key string, data []byte) error

	// Retrieve returns ErrNotFound for missing keys.
	Retrieve(ctx context.Context, key string) ([]byte, error)

	// Delete is idempotent.
	Delete(ctx context.Context, key string) error

	Exists(ctx context.Context, key string) (bool, error)

	Start(lc *lifecycle.Coordinator) error
}

// New constructs the provider selected by cfg.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	switch cfg.Provider {
	case ProviderFilesystem:
		return NewFilesystem(cfg.BasePath, logger)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", cfg.Provider)
	}
}
