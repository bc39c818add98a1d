// Package infrastructure assembles the shared systems every domain module
// depends on: lifecycle, logging, the record database, blob storage, the
// read cache, and the cleanup queue.
package infrastructure

import (
	"fmt"
	"log/slog"

	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/migrations"
	"github.com/JaimeStill/docpages/pkg/cache"
	"github.com/JaimeStill/docpages/pkg/database"
	"github.com/JaimeStill/docpages/pkg/lifecycle"
	"github.com/JaimeStill/docpages/pkg/logging"
	"github.com/JaimeStill/docpages/pkg/queue"
	"github.com/JaimeStill/docpages/pkg/storage"
)

type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System
	Queue     queue.Queue

	autoMigrate bool
	databaseURL string
}

// New constructs every system without connecting; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := logging.New(&cfg.Logging)

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	q, err := queue.New(lc.Context(), &cfg.Queue, logger)
	if err != nil {
		return nil, fmt.Errorf("queue init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle:   lc,
		Logger:      logger,
		Database:    db,
		Storage:     store,
		Cache:       cache.New(&cfg.Cache, logger),
		Queue:       q,
		autoMigrate: cfg.Database.AutoMigrate,
		databaseURL: cfg.Database.URL(),
	}, nil
}

// Start connects the database, applies pending migrations when enabled,
// and starts storage and cache.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if i.autoMigrate {
		if err := migrations.Up(i.databaseURL, i.Logger); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	return nil
}
