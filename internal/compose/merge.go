package compose

import (
	"context"
	"fmt"

	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// PageRef names one source page in a merge arrangement.
type PageRef struct {
	DocumentID uuid.UUID `json:"document_id"`
	PageID     uuid.UUID `json:"page_id"`
}

// PlanItem is a PageRef with the source details a caller needs to arrange
// it.
type PlanItem struct {
	PageRef
	DocumentName string `json:"document_name"`
	SourceNumber int    `json:"source_page_number"`
}

// MergePlan is the ordered page list of a pending merge: every page of the
// first document in page order, then the second, and so on.
type MergePlan struct {
	DocumentIDs []uuid.UUID `json:"document_ids"`
	Items       []PlanItem  `json:"items"`
}

// MergeCommand commits a merge. A nil Pages keeps the default plan order;
// otherwise Pages is the final arrangement and every entry must belong to
// one of DocumentIDs.
type MergeCommand struct {
	Name        string      `json:"name"`
	FolderID    *uuid.UUID  `json:"folder_id,omitempty"`
	DocumentIDs []uuid.UUID `json:"document_ids"`
	Pages       []PageRef   `json:"pages,omitempty"`
}

func (c *composer) PlanMerge(ctx context.Context, owner uuid.UUID, documentIDs []uuid.UUID) (*MergePlan, error) {
	ids, err := distinct(documentIDs)
	if err != nil {
		return nil, err
	}

	details := make([]*documents.Detail, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			d, err := c.docs.Pages(gctx, owner, id)
			if err != nil {
				return err
			}
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := &MergePlan{DocumentIDs: ids}
	for _, d := range details {
		for _, p := range d.Pages {
			plan.Items = append(plan.Items, PlanItem{
				PageRef:      PageRef{DocumentID: d.Document.ID, PageID: p.ID},
				DocumentName: d.Document.Name,
				SourceNumber: p.Number,
			})
		}
	}
	return plan, nil
}

// Merge loads every page of the source documents with caches bypassed,
// applies the arrangement, and creates one new document numbered 1..M.
func (c *composer) Merge(ctx context.Context, owner uuid.UUID, cmd MergeCommand) (*documents.Detail, error) {
	ids, err := distinct(cmd.DocumentIDs)
	if err != nil {
		return nil, err
	}

	type source struct {
		doc   *documents.Document
		pages []documents.PageData
	}

	sources := make([]source, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			doc, pages, err := c.docs.LoadPages(gctx, owner, id)
			if err != nil {
				return err
			}
			sources[i] = source{doc: doc, pages: pages}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var ordered []documents.PageData
	if cmd.Pages == nil {
		for _, s := range sources {
			ordered = append(ordered, s.pages...)
		}
	} else {
		index := make(map[PageRef]documents.PageData)
		for _, s := range sources {
			for _, p := range s.pages {
				index[PageRef{DocumentID: s.doc.ID, PageID: p.Page.ID}] = p
			}
		}

		used := make(map[PageRef]bool, len(cmd.Pages))
		for _, ref := range cmd.Pages {
			p, ok := index[ref]
			if !ok {
				return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPage, ref.DocumentID, ref.PageID)
			}
			if used[ref] {
				return nil, fmt.Errorf("%w: page %s listed twice", ErrUnknownPage, ref.PageID)
			}
			used[ref] = true
			ordered = append(ordered, p)
		}
	}

	if len(ordered) == 0 {
		return nil, ErrEmptySelection
	}

	imgs, _ := c.decodeAll(ordered)
	if len(imgs) == 0 {
		return nil, ErrNoExportableContent
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name := cmd.Name
	if name == "" {
		name = sources[0].doc.Name + " (merged)"
	}

	detail, err := c.docs.Create(ctx, owner, documents.CreateCommand{
		Name:     name,
		FolderID: cmd.FolderID,
		Pages:    imgs,
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("documents merged",
		"id", detail.Document.ID,
		"sources", len(ids),
		"page_count", len(detail.Pages),
		"skipped", len(ordered)-len(imgs),
	)
	return detail, nil
}

// distinct drops repeated ids, keeping first occurrences, and requires at
// least two remain.
func distinct(ids []uuid.UUID) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	if len(out) < 2 {
		return nil, ErrInsufficientInput
	}
	return out, nil
}
