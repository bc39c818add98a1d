// Package blobs is the byte half of the page store. Locators are storage
// keys that are never rewritten: every Put mints a new one.
package blobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/docpages/pkg/cache"
	"github.com/JaimeStill/docpages/pkg/storage"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("blob not found")

// Kind groups locators by what they hold.
type Kind string

const (
	KindPage      Kind = "pages"
	KindThumbnail Kind = "thumbnails"
)

type Store interface {
	// Put stores data under a fresh locator for documentID.
	Put(ctx context.Context, documentID uuid.UUID, kind Kind, contentType string, data []byte) (string, error)

	// Get reads locator. bypassCache forces a read from the backing store
	// and refreshes the cache with the result.
	Get(ctx context.Context, locator string, bypassCache bool) ([]byte, error)

	// Delete returns ErrNotFound when nothing is stored at locator.
	Delete(ctx context.Context, locator string) error
}

type store struct {
	storage storage.System
	cache   cache.System
	logger  *slog.Logger
}

func New(storage storage.System, cache cache.System, logger *slog.Logger) Store {
	return &store{
		storage: storage,
		cache:   cache,
		logger:  logger.With("system", "blobs"),
	}
}

func (s *store) Put(ctx context.Context, documentID uuid.UUID, kind Kind, contentType string, data []byte) (string, error) {
	locator := fmt.Sprintf("%s/%s/%s%s", kind, documentID, uuid.NewString(), extension(contentType))

	if err := s.storage.Store(ctx, locator, data); err != nil {
		return "", fmt.Errorf("store blob: %w", err)
	}
	return locator, nil
}

func (s *store) Get(ctx context.Context, locator string, bypassCache bool) ([]byte, error) {
	if !bypassCache {
		data, ok, err := s.cache.Get(ctx, locator)
		if err != nil {
			s.logger.Warn("cache read failed", "locator", locator, "error", err)
		} else if ok {
			return data, nil
		}
	}

	data, err := s.storage.Retrieve(ctx, locator)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("retrieve blob: %w", err)
	}

	if err := s.cache.Set(ctx, locator, data); err != nil {
		s.logger.Warn("cache write failed", "locator", locator, "error", err)
	}
	return data, nil
}

func (s *store) Delete(ctx context.Context, locator string) error {
	exists, err := s.storage.Exists(ctx, locator)
	if err != nil {
		return fmt.Errorf("check blob: %w", err)
	}

	if err := s.cache.Delete(ctx, locator); err != nil {
		s.logger.Warn("cache invalidation failed", "locator", locator, "error", err)
	}

	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, locator)
	}

	if err := s.storage.Delete(ctx, locator); err != nil {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

func extension(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "application/pdf":
		return ".pdf"
	default:
		return ""
	}
}
