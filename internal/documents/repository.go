package documents

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"

	"github.com/JaimeStill/docpages/internal/blobs"
	"github.com/JaimeStill/docpages/internal/cleanup"
	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/JaimeStill/docpages/pkg/pagination"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	pageContentType = "image/jpeg"
	maxNameLength   = 255
)

type repo struct {
	records    records.Documents
	blobs      blobs.Store
	cleanup    cleanup.System
	pages      config.PagesConfig
	logger     *slog.Logger
	pagination pagination.Config
}

func New(
	recs records.Documents,
	store blobs.Store,
	sweeper cleanup.System,
	pages config.PagesConfig,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &repo{
		records:    recs,
		blobs:      store,
		cleanup:    sweeper,
		pages:      pages,
		logger:     logger.With("system", "documents"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Create(ctx context.Context, owner uuid.UUID, cmd CreateCommand) (*Detail, error) {
	if err := validateName(cmd.Name); err != nil {
		return nil, err
	}
	if len(cmd.Pages) == 0 {
		return nil, ErrNoPages
	}

	id := uuid.New()
	uploads := newUploadSet()

	newPages := make([]records.NewPage, len(cmd.Pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(cmd.Pages)))

	for i, img := range cmd.Pages {
		g.Go(func() error {
			up, err := r.upload(gctx, id, img, uploads)
			if err != nil {
				return fmt.Errorf("page %d: %w", i+1, err)
			}
			newPages[i] = records.NewPage{
				ImageKey:     up.imageKey,
				ThumbnailKey: &up.thumbnailKey,
				SizeBytes:    up.size,
				Width:        up.width,
				Height:       up.height,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.discard(ctx, "create failed", uploads)
		return nil, err
	}

	doc, pages, err := r.records.CreateDocument(ctx, owner, records.NewDocument{
		ID:       id,
		Name:     cmd.Name,
		FolderID: cmd.FolderID,
	}, newPages)
	if err != nil {
		r.discard(ctx, "create failed", uploads)
		return nil, recordError(err, ErrNotFound)
	}

	r.logger.Info("document created", "id", doc.ID, "owner_id", owner, "page_count", len(pages))
	return &Detail{Document: *doc, Pages: pages}, nil
}

func (r *repo) List(ctx context.Context, owner uuid.UUID, page pagination.PageRequest, filters records.DocumentFilters) (*pagination.PageResult[Document], error) {
	result, err := r.records.ListDocuments(ctx, owner, page, filters)
	if err != nil {
		return nil, recordError(err, ErrNotFound)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, owner, id uuid.UUID) (*Document, error) {
	doc, err := r.records.FindDocument(ctx, owner, id)
	if err != nil {
		return nil, recordError(err, ErrNotFound)
	}
	return doc, nil
}

func (r *repo) Update(ctx context.Context, owner, id uuid.UUID, cmd UpdateCommand) (*Document, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	doc, err := r.records.UpdateDocument(ctx, owner, id, records.DocumentUpdate{
		Name:     cmd.Name,
		Favorite: cmd.Favorite,
		FolderID: cmd.FolderID,
	})
	if err != nil {
		return nil, recordError(err, ErrNotFound)
	}

	r.logger.Info("document updated", "id", id, "owner_id", owner)
	return doc, nil
}

func (r *repo) Delete(ctx context.Context, owner, id uuid.UUID) error {
	pages, err := r.records.DeleteDocument(ctx, owner, id)
	if err != nil {
		return recordError(err, ErrNotFound)
	}

	if err := r.cleanup.Enqueue(ctx, "document deleted", locators(pages)...); err != nil {
		r.logger.Warn("blob cleanup not scheduled", "id", id, "error", err)
	}

	r.logger.Info("document deleted", "id", id, "owner_id", owner, "page_count", len(pages))
	return nil
}

func (r *repo) Pages(ctx context.Context, owner, id uuid.UUID) (*Detail, error) {
	doc, pages, err := r.documentPages(ctx, owner, id)
	if err != nil {
		return nil, err
	}
	return &Detail{Document: *doc, Pages: pages}, nil
}

func (r *repo) LoadPages(ctx context.Context, owner, id uuid.UUID) (*Document, []PageData, error) {
	doc, pages, err := r.documentPages(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}

	out := make([]PageData, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(pages)))

	for i, p := range pages {
		g.Go(func() error {
			data, err := r.blobs.Get(gctx, p.ImageKey, true)
			if err != nil {
				return blobError(fmt.Errorf("page %d: %w", p.Number, err))
			}
			out[i] = PageData{Page: p, Data: data}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return doc, out, nil
}

func (r *repo) PageImage(ctx context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error) {
	p, err := r.records.FindPage(ctx, owner, id, pageID)
	if err != nil {
		return nil, recordError(err, ErrPageNotFound)
	}
	return r.read(ctx, p.ImageKey, fresh)
}

func (r *repo) PageThumbnail(ctx context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error) {
	p, err := r.records.FindPage(ctx, owner, id, pageID)
	if err != nil {
		return nil, recordError(err, ErrPageNotFound)
	}
	if p.ThumbnailKey == nil {
		return nil, fmt.Errorf("%w: page %d has no thumbnail", ErrPageNotFound, p.Number)
	}
	return r.read(ctx, *p.ThumbnailKey, fresh)
}

func (r *repo) SavePages(ctx context.Context, owner, id uuid.UUID, cmd SaveCommand) (*SaveResult, error) {
	doc, pages, err := r.documentPages(ctx, owner, id)
	if err != nil {
		return nil, err
	}

	if cmd.Expected != nil && !doc.UpdatedAt.Equal(*cmd.Expected) {
		return nil, ErrConflict
	}

	if len(cmd.Edits) == 0 {
		return &SaveResult{Document: doc, Pages: []Page{}}, nil
	}

	byID := make(map[uuid.UUID]Page, len(pages))
	for _, p := range pages {
		byID[p.ID] = p
	}

	seen := make(map[uuid.UUID]bool, len(cmd.Edits))
	for _, e := range cmd.Edits {
		if _, ok := byID[e.PageID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, e.PageID)
		}
		if seen[e.PageID] {
			return nil, fmt.Errorf("%w: page %s edited twice", ErrValidation, e.PageID)
		}
		if e.Image == nil {
			return nil, fmt.Errorf("%w: page %s has no image", ErrValidation, e.PageID)
		}
		seen[e.PageID] = true
	}

	uploads := newUploadSet()
	updates := make([]records.PageUpdate, len(cmd.Edits))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(len(cmd.Edits)))

	for i, e := range cmd.Edits {
		g.Go(func() error {
			up, err := r.upload(gctx, id, e.Image, uploads)
			if err != nil {
				return fmt.Errorf("page %d: %w", byID[e.PageID].Number, err)
			}
			updates[i] = records.PageUpdate{
				PageID:       e.PageID,
				ImageKey:     up.imageKey,
				ThumbnailKey: &up.thumbnailKey,
				SizeBytes:    up.size,
				Width:        up.width,
				Height:       up.height,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		r.discard(ctx, "save failed", uploads)
		return nil, err
	}

	updated, err := r.records.UpdatePages(ctx, owner, id, updates, cmd.Expected)
	if err != nil {
		r.discard(ctx, "save failed", uploads)
		return nil, recordError(err, ErrNotFound)
	}

	superseded := make([]Page, 0, len(cmd.Edits))
	for _, e := range cmd.Edits {
		superseded = append(superseded, byID[e.PageID])
	}
	if err := r.cleanup.Enqueue(ctx, "pages replaced", locators(superseded)...); err != nil {
		r.logger.Warn("blob cleanup not scheduled", "id", id, "error", err)
	}

	result := &SaveResult{Pages: updated, Uploaded: len(updates)}

	touched, err := r.records.TouchDocument(ctx, owner, id)
	if err != nil {
		return result, recordError(err, ErrNotFound)
	}
	result.Document = touched

	r.logger.Info("pages saved", "id", id, "owner_id", owner, "count", len(updated))
	return result, nil
}

// documentPages loads the document and its pages and verifies the cached
// page count and contiguous numbering.
func (r *repo) documentPages(ctx context.Context, owner, id uuid.UUID) (*Document, []Page, error) {
	doc, err := r.records.FindDocument(ctx, owner, id)
	if err != nil {
		return nil, nil, recordError(err, ErrNotFound)
	}

	pages, err := r.records.ListPages(ctx, owner, id)
	if err != nil {
		return nil, nil, recordError(err, ErrNotFound)
	}

	if err := checkPages(doc, pages); err != nil {
		r.logger.Error("document inconsistent", "id", id, "error", err)
		return nil, nil, err
	}
	return doc, pages, nil
}

func (r *repo) read(ctx context.Context, locator string, fresh bool) ([]byte, error) {
	data, err := r.blobs.Get(ctx, locator, fresh)
	if err != nil {
		return nil, blobError(err)
	}
	return data, nil
}

type uploaded struct {
	imageKey     string
	thumbnailKey string
	size         int64
	width        int
	height       int
}

// upload encodes img and its thumbnail and stores both. Every locator that
// was written is recorded in set, including on failure.
func (r *repo) upload(ctx context.Context, documentID uuid.UUID, img *image.NRGBA, set *uploadSet) (*uploaded, error) {
	full, err := transform.EncodeJPEG(img, r.pages.JPEGQuality)
	if err != nil {
		return nil, err
	}

	thumb, err := transform.EncodeJPEG(transform.Thumbnail(img, r.pages.ThumbnailSize), r.pages.JPEGQuality)
	if err != nil {
		return nil, err
	}

	imageKey, err := r.blobs.Put(ctx, documentID, blobs.KindPage, pageContentType, full)
	if err != nil {
		return nil, blobError(err)
	}
	set.add(imageKey)

	thumbKey, err := r.blobs.Put(ctx, documentID, blobs.KindThumbnail, pageContentType, thumb)
	if err != nil {
		return nil, blobError(err)
	}
	set.add(thumbKey)

	b := img.Bounds()
	return &uploaded{
		imageKey:     imageKey,
		thumbnailKey: thumbKey,
		size:         int64(len(full)),
		width:        b.Dx(),
		height:       b.Dy(),
	}, nil
}

// discard hands blobs no record will reference to cleanup. The caller's
// context may already be cancelled, so enqueueing runs without it.
func (r *repo) discard(ctx context.Context, reason string, set *uploadSet) {
	keys := set.keys()
	if len(keys) == 0 {
		return
	}
	if err := r.cleanup.Enqueue(context.WithoutCancel(ctx), reason, keys...); err != nil {
		r.logger.Warn("orphaned blobs not scheduled for cleanup", "reason", reason, "count", len(keys), "error", err)
	}
}

type uploadSet struct {
	mu   sync.Mutex
	list []string
}

func newUploadSet() *uploadSet {
	return &uploadSet{}
}

func (s *uploadSet) add(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = append(s.list, key)
}

func (s *uploadSet) keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.list...)
}

func checkPages(doc *Document, pages []Page) error {
	if doc.PageCount != len(pages) {
		return fmt.Errorf("%w: page_count %d, found %d pages", ErrConsistencyViolation, doc.PageCount, len(pages))
	}
	for i, p := range pages {
		if p.Number != i+1 {
			return fmt.Errorf("%w: expected page %d, found %d", ErrConsistencyViolation, i+1, p.Number)
		}
	}
	return nil
}

func locators(pages []Page) []string {
	out := make([]string, 0, len(pages)*2)
	for _, p := range pages {
		out = append(out, p.ImageKey)
		if p.ThumbnailKey != nil {
			out = append(out, *p.ThumbnailKey)
		}
	}
	return out
}

func validateName(name string) error {
	err := validation.Validate(name,
		validation.Required,
		validation.Length(1, maxNameLength),
	)
	if err != nil {
		return fmt.Errorf("%w: name: %w", ErrValidation, err)
	}
	return nil
}

func workerCount(n int) int {
	return max(min(runtime.NumCPU(), n), 1)
}
