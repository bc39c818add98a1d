package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/docpages/pkg/pagination"
	"github.com/JaimeStill/docpages/pkg/query"
	"github.com/JaimeStill/docpages/pkg/repository"
	"github.com/google/uuid"
)

// Documents is the record half of the page store: documents and their
// ordered pages.
type Documents interface {
	// CreateDocument inserts the document and its pages, numbered 1..N in
	// slice order, in one transaction.
	CreateDocument(ctx context.Context, owner uuid.UUID, doc NewDocument, pages []NewPage) (*Document, []Page, error)
	ListDocuments(ctx context.Context, owner uuid.UUID, page pagination.PageRequest, filters DocumentFilters) (*pagination.PageResult[Document], error)
	FindDocument(ctx context.Context, owner, id uuid.UUID) (*Document, error)
	UpdateDocument(ctx context.Context, owner, id uuid.UUID, update DocumentUpdate) (*Document, error)
	// DeleteDocument removes the document, its pages, and its tag links in
	// one transaction and returns the deleted pages.
	DeleteDocument(ctx context.Context, owner, id uuid.UUID) ([]Page, error)

	// ListPages returns pages ordered by page number.
	ListPages(ctx context.Context, owner, documentID uuid.UUID) ([]Page, error)
	FindPage(ctx context.Context, owner, documentID, pageID uuid.UUID) (*Page, error)
	// UpdatePages applies every update in one transaction. When expected is
	// non-nil the document's updated_at must still equal it.
	UpdatePages(ctx context.Context, owner, documentID uuid.UUID, updates []PageUpdate, expected *time.Time) ([]Page, error)
	// TouchDocument bumps updated_at and recomputes size_bytes from pages.
	TouchDocument(ctx context.Context, owner, documentID uuid.UUID) (*Document, error)
}

type documentRepo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

func NewDocuments(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Documents {
	return &documentRepo{
		db:         db,
		logger:     logger.With("system", "records", "records", "documents"),
		pagination: pagination,
	}
}

func (r *documentRepo) CreateDocument(ctx context.Context, owner uuid.UUID, nd NewDocument, pages []NewPage) (*Document, []Page, error) {
	if len(pages) == 0 {
		return nil, nil, fmt.Errorf("create document: no pages")
	}

	var size int64
	for _, p := range pages {
		size += p.SizeBytes
	}

	type created struct {
		doc   Document
		pages []Page
	}

	docQ := `INSERT INTO documents(id, owner_id, name, folder_id, page_count, size_bytes)
		VALUES($1, $2, $3, $4, $5, $6)
		RETURNING ` + documentColumns

	pageQ := `INSERT INTO pages(id, document_id, page_number, image_key, thumbnail_key, size_bytes, width, height)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + pageColumns

	id := nd.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	out, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (created, error) {
		if err := checkFolder(ctx, tx, owner, nd.FolderID); err != nil {
			return created{}, err
		}

		doc, err := repository.QueryOne(ctx, tx, docQ, []any{
			id, owner, nd.Name, nd.FolderID, len(pages), size,
		}, scanDocument)
		if err != nil {
			return created{}, err
		}

		result := created{doc: doc, pages: make([]Page, 0, len(pages))}
		for i, np := range pages {
			p, err := repository.QueryOne(ctx, tx, pageQ, []any{
				uuid.New(), doc.ID, i + 1, np.ImageKey, np.ThumbnailKey, np.SizeBytes, np.Width, np.Height,
			}, scanPage)
			if err != nil {
				return created{}, err
			}
			result.pages = append(result.pages, p)
		}
		return result, nil
	})

	if err != nil {
		return nil, nil, mapError(err)
	}

	r.logger.Info("document record created", "id", out.doc.ID, "owner_id", owner, "page_count", len(out.pages))
	return &out.doc, out.pages, nil
}

func (r *documentRepo) ListDocuments(ctx context.Context, owner uuid.UUID, page pagination.PageRequest, filters DocumentFilters) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(documentProjection, documentDefaultSort).
		WhereEquals("OwnerId", owner).
		WhereSearch(page.Search, "Name")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *documentRepo) FindDocument(ctx context.Context, owner, id uuid.UUID) (*Document, error) {
	q, args := query.
		NewBuilder(documentProjection).
		WhereEquals("OwnerId", owner).
		BuildSingle("Id", id)

	doc, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, mapError(err)
	}
	return &doc, nil
}

func (r *documentRepo) UpdateDocument(ctx context.Context, owner, id uuid.UUID, u DocumentUpdate) (*Document, error) {
	q := `UPDATE documents SET name = $1, favorite = $2, folder_id = $3, updated_at = NOW()
		WHERE id = $4 AND owner_id = $5
		RETURNING ` + documentColumns

	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		if err := checkFolder(ctx, tx, owner, u.FolderID); err != nil {
			return Document{}, err
		}
		return repository.QueryOne(ctx, tx, q, []any{u.Name, u.Favorite, u.FolderID, id, owner}, scanDocument)
	})

	if err != nil {
		return nil, mapError(err)
	}
	return &doc, nil
}

func (r *documentRepo) DeleteDocument(ctx context.Context, owner, id uuid.UUID) ([]Page, error) {
	pagesQ := `SELECT ` + pageColumns + ` FROM pages WHERE document_id = $1 ORDER BY page_number`
	deleteQ := `DELETE FROM documents WHERE id = $1 AND owner_id = $2`

	pages, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Page, error) {
		if err := lockDocument(ctx, tx, owner, id, nil); err != nil {
			return nil, err
		}

		pages, err := repository.QueryMany(ctx, tx, pagesQ, []any{id}, scanPage)
		if err != nil {
			return nil, err
		}

		if err := repository.ExecExpectOne(ctx, tx, deleteQ, id, owner); err != nil {
			return nil, err
		}
		return pages, nil
	})

	if err != nil {
		return nil, mapError(err)
	}

	r.logger.Info("document record deleted", "id", id, "owner_id", owner, "page_count", len(pages))
	return pages, nil
}

func (r *documentRepo) ListPages(ctx context.Context, owner, documentID uuid.UUID) ([]Page, error) {
	q := fmt.Sprintf(
		`SELECT %s FROM %s JOIN public.documents d ON d.id = p.document_id
		WHERE p.document_id = $1 AND d.owner_id = $2
		ORDER BY p.page_number`,
		pageProjection.Columns(), pageProjection.Table(),
	)

	pages, err := repository.QueryMany(ctx, r.db, q, []any{documentID, owner}, scanPage)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	return pages, nil
}

func (r *documentRepo) FindPage(ctx context.Context, owner, documentID, pageID uuid.UUID) (*Page, error) {
	q := fmt.Sprintf(
		`SELECT %s FROM %s JOIN public.documents d ON d.id = p.document_id
		WHERE p.id = $1 AND p.document_id = $2 AND d.owner_id = $3`,
		pageProjection.Columns(), pageProjection.Table(),
	)

	p, err := repository.QueryOne(ctx, r.db, q, []any{pageID, documentID, owner}, scanPage)
	if err != nil {
		return nil, mapError(err)
	}
	return &p, nil
}

func (r *documentRepo) UpdatePages(ctx context.Context, owner, documentID uuid.UUID, updates []PageUpdate, expected *time.Time) ([]Page, error) {
	if len(updates) == 0 {
		return []Page{}, nil
	}

	q := `UPDATE pages
		SET image_key = $1, thumbnail_key = $2, size_bytes = $3, width = $4, height = $5
		WHERE id = $6 AND document_id = $7
		RETURNING ` + pageColumns

	pages, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Page, error) {
		if err := lockDocument(ctx, tx, owner, documentID, expected); err != nil {
			return nil, err
		}

		out := make([]Page, 0, len(updates))
		for _, u := range updates {
			p, err := repository.QueryOne(ctx, tx, q, []any{
				u.ImageKey, u.ThumbnailKey, u.SizeBytes, u.Width, u.Height, u.PageID, documentID,
			}, scanPage)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	})

	if err != nil {
		return nil, mapError(err)
	}

	r.logger.Debug("page records updated", "document_id", documentID, "count", len(pages))
	return pages, nil
}

func (r *documentRepo) TouchDocument(ctx context.Context, owner, documentID uuid.UUID) (*Document, error) {
	q := `UPDATE documents
		SET updated_at = NOW(),
			size_bytes = (SELECT COALESCE(SUM(size_bytes), 0) FROM pages WHERE document_id = $1)
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + documentColumns

	doc, err := repository.QueryOne(ctx, r.db, q, []any{documentID, owner}, scanDocument)
	if err != nil {
		return nil, mapError(err)
	}
	return &doc, nil
}

// lockDocument takes a row lock on the owner's document and, when expected
// is set, verifies updated_at has not moved.
func lockDocument(ctx context.Context, tx *sql.Tx, owner, id uuid.UUID, expected *time.Time) error {
	var updatedAt time.Time
	err := tx.QueryRowContext(ctx,
		`SELECT updated_at FROM documents WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
		id, owner,
	).Scan(&updatedAt)
	if err != nil {
		return err
	}

	if expected != nil && !updatedAt.Equal(*expected) {
		return ErrConflict
	}
	return nil
}

func checkFolder(ctx context.Context, tx *sql.Tx, owner uuid.UUID, folderID *uuid.UUID) error {
	if folderID == nil {
		return nil
	}

	var exists bool
	err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM folders WHERE id = $1 AND owner_id = $2)`,
		*folderID, owner,
	).Scan(&exists)
	if err != nil {
		return err
	}
	if !exists {
		return ErrInvalidReference
	}
	return nil
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrConflict), errors.Is(err, ErrInvalidReference):
		return err
	case repository.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %w", ErrInvalidReference, err)
	default:
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
}
