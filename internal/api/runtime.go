package api

import (
	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/infrastructure"
	"github.com/JaimeStill/docpages/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination    pagination.Config
	Pages         config.PagesConfig
	Sessions      config.SessionsConfig
	MaxUploadSize int64
	// CleanupVisibility is the queue lease in seconds for blob deletions.
	CleanupVisibility int32
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	scoped := *infra
	scoped.Logger = infra.Logger.With("module", "api")

	return &Runtime{
		Infrastructure:    &scoped,
		Pagination:        cfg.API.Pagination,
		Pages:             cfg.Pages,
		Sessions:          cfg.Sessions,
		MaxUploadSize:     cfg.Storage.MaxUploadSizeBytes(),
		CleanupVisibility: cfg.Queue.VisibilityTimeout,
	}
}
