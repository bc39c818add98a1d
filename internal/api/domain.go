package api

import (
	"github.com/JaimeStill/docpages/internal/blobs"
	"github.com/JaimeStill/docpages/internal/cleanup"
	"github.com/JaimeStill/docpages/internal/compose"
	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/folders"
	"github.com/JaimeStill/docpages/internal/imports"
	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/internal/sessions"
	"github.com/JaimeStill/docpages/internal/tags"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Cleanup   cleanup.System
	Documents documents.System
	Sessions  sessions.System
	Compose   compose.System
	Imports   imports.System
	Folders   folders.System
	Tags      tags.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()
	store := blobs.New(runtime.Storage, runtime.Cache, runtime.Logger)

	cleanupSys := cleanup.New(
		runtime.Queue,
		store,
		runtime.CleanupVisibility,
		runtime.Logger,
	)

	documentsSys := documents.New(
		records.NewDocuments(db, runtime.Logger, runtime.Pagination),
		store,
		cleanupSys,
		runtime.Pages,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Cleanup:   cleanupSys,
		Documents: documentsSys,
		Sessions:  sessions.New(documentsSys, runtime.Sessions, runtime.Pages, runtime.Logger),
		Compose:   compose.New(documentsSys, runtime.Pages, runtime.Logger),
		Imports: imports.New(
			documentsSys,
			imports.NewRasterizer(),
			runtime.Pages,
			runtime.MaxUploadSize,
			runtime.Logger,
		),
		Folders: folders.New(records.NewFolders(db, runtime.Logger), runtime.Logger),
		Tags:    tags.New(records.NewTags(db, runtime.Logger), runtime.Logger),
	}
}

// Start launches the background workers owned by domain systems.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Cleanup.Start(runtime.Lifecycle); err != nil {
		return err
	}
	return d.Sessions.Start(runtime.Lifecycle)
}
