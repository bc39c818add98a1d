package documents

import (
	"context"

	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/pkg/pagination"
	"github.com/google/uuid"
)

// System is the document repository. Every call names the owner it acts
// for; no operation infers identity.
type System interface {
	Handler() *Handler

	// Create encodes and uploads every page concurrently, then creates the
	// document and its pages in one record write. Uploaded bytes are handed
	// to cleanup if the record write fails.
	Create(ctx context.Context, owner uuid.UUID, cmd CreateCommand) (*Detail, error)
	List(ctx context.Context, owner uuid.UUID, page pagination.PageRequest, filters records.DocumentFilters) (*pagination.PageResult[Document], error)
	Find(ctx context.Context, owner, id uuid.UUID) (*Document, error)
	Update(ctx context.Context, owner, id uuid.UUID, cmd UpdateCommand) (*Document, error)
	// Delete removes the records in one transaction, then schedules every
	// page and thumbnail blob for cleanup.
	Delete(ctx context.Context, owner, id uuid.UUID) error

	// Pages returns the page records ordered by page number.
	Pages(ctx context.Context, owner, id uuid.UUID) (*Detail, error)
	// LoadPages fetches page bytes concurrently with the cache bypassed.
	// Results are ordered by page number regardless of fetch order.
	LoadPages(ctx context.Context, owner, id uuid.UUID) (*Document, []PageData, error)
	PageImage(ctx context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error)
	PageThumbnail(ctx context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error)

	// SavePages persists edited page rasters: concurrent uploads of every
	// image and thumbnail, then one page batch write, then one document
	// timestamp write.
	SavePages(ctx context.Context, owner, id uuid.UUID, cmd SaveCommand) (*SaveResult, error)
}
