// Package compose builds new documents and output files from pages of
// existing documents: merge, extract, and export. Source documents are
// never modified.
package compose

import (
	"context"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/google/uuid"
)

// Documents is the slice of the document repository composition needs.
type Documents interface {
	Create(ctx context.Context, owner uuid.UUID, cmd documents.CreateCommand) (*documents.Detail, error)
	Pages(ctx context.Context, owner, id uuid.UUID) (*documents.Detail, error)
	LoadPages(ctx context.Context, owner, id uuid.UUID) (*documents.Document, []documents.PageData, error)
	PageImage(ctx context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error)
}

type System interface {
	Handler() *Handler

	// PlanMerge lists the pages of every document in merge order for the
	// caller to rearrange before committing.
	PlanMerge(ctx context.Context, owner uuid.UUID, documentIDs []uuid.UUID) (*MergePlan, error)
	Merge(ctx context.Context, owner uuid.UUID, cmd MergeCommand) (*documents.Detail, error)
	Extract(ctx context.Context, owner uuid.UUID, cmd ExtractCommand) (*documents.Detail, error)
	Export(ctx context.Context, owner, documentID uuid.UUID, format Format) (*Export, error)
}

type composer struct {
	docs   Documents
	pages  config.PagesConfig
	logger *slog.Logger
}

func New(docs Documents, pages config.PagesConfig, logger *slog.Logger) System {
	return &composer{
		docs:   docs,
		pages:  pages,
		logger: logger.With("system", "compose"),
	}
}

func (c *composer) Handler() *Handler {
	return NewHandler(c, c.logger)
}

// decodeAll decodes pages concurrently and returns the decodable ones in
// input order. Pages that fail to decode are logged and skipped.
func (c *composer) decodeAll(pages []documents.PageData) ([]*image.NRGBA, []documents.Page) {
	imgs := make([]*image.NRGBA, len(pages))

	var wg sync.WaitGroup
	sem := make(chan struct{}, max(min(runtime.NumCPU(), len(pages)), 1))

	for i, p := range pages {
		wg.Go(func() {
			sem <- struct{}{}
			defer func() { <-sem }()

			img, _, err := transform.Decode(p.Data)
			if err != nil {
				c.logger.Warn("skipping undecodable page",
					"document_id", p.Page.DocumentID,
					"page_id", p.Page.ID,
					"page_number", p.Page.Number,
					"error", err,
				)
				return
			}
			imgs[i] = img
		})
	}
	wg.Wait()

	out := make([]*image.NRGBA, 0, len(imgs))
	kept := make([]documents.Page, 0, len(imgs))
	for i, img := range imgs {
		if img != nil {
			out = append(out, img)
			kept = append(kept, pages[i].Page)
		}
	}
	return out, kept
}
