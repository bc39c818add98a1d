package compose

import (
	"context"
	"fmt"
	"runtime"
	"slices"

	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// ExtractCommand copies a selection of pages into a new document. The
// order of PageIDs carries no meaning.
type ExtractCommand struct {
	DocumentID uuid.UUID   `json:"document_id"`
	PageIDs    []uuid.UUID `json:"page_ids"`
	Name       string      `json:"name"`
	FolderID   *uuid.UUID  `json:"folder_id,omitempty"`
}

func (c *composer) Extract(ctx context.Context, owner uuid.UUID, cmd ExtractCommand) (*documents.Detail, error) {
	if len(cmd.PageIDs) == 0 {
		return nil, ErrEmptySelection
	}

	src, err := c.docs.Pages(ctx, owner, cmd.DocumentID)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]documents.Page, len(src.Pages))
	for _, p := range src.Pages {
		byID[p.ID] = p
	}

	selected := make([]documents.Page, 0, len(cmd.PageIDs))
	seen := make(map[uuid.UUID]bool, len(cmd.PageIDs))
	for _, id := range cmd.PageIDs {
		p, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPage, id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		selected = append(selected, p)
	}

	slices.SortFunc(selected, func(a, b documents.Page) int {
		return a.Number - b.Number
	})

	data := make([]documents.PageData, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(min(runtime.NumCPU(), len(selected)), 1))

	for i, p := range selected {
		g.Go(func() error {
			b, err := c.docs.PageImage(gctx, owner, cmd.DocumentID, p.ID, true)
			if err != nil {
				return err
			}
			data[i] = documents.PageData{Page: p, Data: b}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	imgs, _ := c.decodeAll(data)
	if len(imgs) == 0 {
		return nil, ErrNoExportableContent
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := cmd.Name
	if name == "" {
		name = src.Document.Name + " (extract)"
	}

	detail, err := c.docs.Create(ctx, owner, documents.CreateCommand{
		Name:     name,
		FolderID: cmd.FolderID,
		Pages:    imgs,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("pages extracted",
		"id", detail.Document.ID,
		"source_id", cmd.DocumentID,
		"page_count", len(detail.Pages),
	)
	return detail, nil
}
