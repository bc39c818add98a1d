package sessions

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/JaimeStill/docpages/pkg/lifecycle"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Pages is the slice of the document repository a session needs.
type Pages interface {
	LoadPages(ctx context.Context, owner, id uuid.UUID) (*documents.Document, []documents.PageData, error)
	SavePages(ctx context.Context, owner, id uuid.UUID, cmd documents.SaveCommand) (*documents.SaveResult, error)
}

type System interface {
	Handler() *Handler

	// Open loads every page of the document, bypassing caches, and starts
	// a session over them.
	Open(ctx context.Context, owner, documentID uuid.UUID) (*View, error)
	Get(owner, id uuid.UUID) (*View, error)
	Apply(owner, id, pageID uuid.UUID, op transform.Operation) (*PageView, error)
	Revert(owner, id, pageID uuid.UUID) (*PageView, error)
	// Preview renders the edited page at preview resolution as JPEG.
	Preview(owner, id, pageID uuid.UUID) ([]byte, error)
	// Save persists every dirty page. Pages whose edited bytes match the
	// original are skipped and return to clean.
	Save(ctx context.Context, owner, id uuid.UUID) (*SaveView, error)
	Close(owner, id uuid.UUID) error

	// Start registers the idle session sweeper.
	Start(lc *lifecycle.Coordinator) error
}

type registry struct {
	pages    Pages
	cfg      config.SessionsConfig
	encoding config.PagesConfig
	logger   *slog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

func New(pages Pages, cfg config.SessionsConfig, encoding config.PagesConfig, logger *slog.Logger) System {
	return &registry{
		pages:    pages,
		cfg:      cfg,
		encoding: encoding,
		logger:   logger.With("system", "sessions"),
		now:      time.Now,
		sessions: make(map[uuid.UUID]*Session),
	}
}

func (r *registry) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *registry) Open(ctx context.Context, owner, documentID uuid.UUID) (*View, error) {
	r.mu.Lock()
	full := r.cfg.MaxOpen > 0 && len(r.sessions) >= r.cfg.MaxOpen
	r.mu.Unlock()
	if full {
		return nil, ErrTooManySessions
	}

	doc, data, err := r.pages.LoadPages(ctx, owner, documentID)
	if err != nil {
		return nil, err
	}

	pages := make([]*page, len(data))
	g := new(errgroup.Group)
	g.SetLimit(max(min(runtime.NumCPU(), len(data)), 1))

	for i, pd := range data {
		g.Go(func() error {
			img, _, err := transform.Decode(pd.Data)
			if err != nil {
				r.logger.Warn("page unreadable",
					"document_id", documentID,
					"page_id", pd.Page.ID,
					"page_number", pd.Page.Number,
					"error", err,
				)
				pages[i] = &page{record: pd.Page, decodeErr: err, state: StateClean}
				return nil
			}
			pages[i] = newPage(pd.Page, img, r.encoding.PreviewSize)
			return nil
		})
	}
	g.Wait()

	s := &Session{
		ID:         uuid.New(),
		Owner:      owner,
		DocumentID: documentID,
		name:       doc.Name,
		updatedAt:  doc.UpdatedAt,
		pages:      pages,
		byID:       make(map[uuid.UUID]*page, len(pages)),
		lastUsed:   r.now(),
	}
	for _, p := range pages {
		s.byID[p.record.ID] = p
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.logger.Info("session opened", "session_id", s.ID, "document_id", documentID, "owner_id", owner, "page_count", len(pages))

	v := s.view()
	return &v, nil
}

func (r *registry) Get(owner, id uuid.UUID) (*View, error) {
	s, err := r.lookup(owner, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastUsed = r.now()
	v := s.view()
	return &v, nil
}

func (r *registry) Apply(owner, id, pageID uuid.UUID, op transform.Operation) (*PageView, error) {
	if err := op.Validate(); err != nil {
		return nil, err
	}

	return r.mutate(owner, id, pageID, func(p *page) error {
		return p.apply(op)
	})
}

func (r *registry) Revert(owner, id, pageID uuid.UUID) (*PageView, error) {
	return r.mutate(owner, id, pageID, func(p *page) error {
		p.revert()
		return nil
	})
}

func (r *registry) Preview(owner, id, pageID uuid.UUID) ([]byte, error) {
	s, err := r.lookup(owner, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.lastUsed = r.now()
	p, err := s.find(pageID)
	if err == nil {
		err = p.readable()
	}
	var img *image.NRGBA
	if err == nil {
		img = p.preview
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	// Preview rasters are replaced, never mutated, so encoding outside
	// the lock is safe.
	return transform.EncodeJPEG(img, r.encoding.JPEGQuality)
}

func (r *registry) Save(ctx context.Context, owner, id uuid.UUID) (*SaveView, error) {
	s, err := r.lookup(owner, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil, ErrSaveInProgress
	}
	s.lastUsed = r.now()

	type pending struct {
		page    *page
		full    *image.NRGBA
		encoded []byte
	}

	var (
		batch   []pending
		edits   []documents.PageEdit
		skipped int
	)

	for _, p := range s.pages {
		if len(p.ops) == 0 || p.original == nil {
			continue
		}

		full, encoded, changed, err := p.render()
		if err != nil {
			s.mu.Unlock()
			return nil, fmt.Errorf("page %d: %w", p.record.Number, err)
		}

		if !changed {
			p.revert()
			skipped++
			continue
		}

		batch = append(batch, pending{page: p, full: full, encoded: encoded})
		edits = append(edits, documents.PageEdit{PageID: p.record.ID, Image: full})
	}

	if len(batch) == 0 {
		v := s.view()
		s.mu.Unlock()
		return &SaveView{Skipped: skipped, Session: v}, nil
	}

	cmd := documents.SaveCommand{Edits: edits}
	if r.cfg.DetectConflicts {
		expected := s.updatedAt
		cmd.Expected = &expected
	}

	for _, b := range batch {
		b.page.state = StateUploading
	}
	s.saving = true
	s.mu.Unlock()

	result, saveErr := r.pages.SavePages(ctx, owner, s.DocumentID, cmd)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false
	s.lastUsed = r.now()

	committed := make(map[uuid.UUID]documents.Page)
	if result != nil {
		for _, p := range result.Pages {
			committed[p.ID] = p
		}
	}

	saved := 0
	for _, b := range batch {
		if rec, ok := committed[b.page.record.ID]; ok {
			b.page.commit(rec, b.full, b.encoded, r.encoding.PreviewSize)
			saved++
		} else {
			b.page.state = StateDirty
		}
	}

	if result != nil && result.Document != nil {
		s.updatedAt = result.Document.UpdatedAt
		s.name = result.Document.Name
	}

	if saveErr != nil {
		r.logger.Warn("session save failed",
			"session_id", s.ID,
			"document_id", s.DocumentID,
			"committed", saved,
			"error", saveErr,
		)
		return nil, saveErr
	}

	r.logger.Info("session saved", "session_id", s.ID, "document_id", s.DocumentID, "saved", saved, "skipped", skipped)
	return &SaveView{Saved: saved, Skipped: skipped, Session: s.view()}, nil
}

func (r *registry) Close(owner, id uuid.UUID) error {
	s, err := r.lookup(owner, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	saving := s.saving
	s.mu.Unlock()
	if saving {
		return ErrSaveInProgress
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	r.logger.Info("session closed", "session_id", id, "document_id", s.DocumentID)
	return nil
}

func (r *registry) Start(lc *lifecycle.Coordinator) error {
	ttl := r.cfg.IdleTTLDuration()
	interval := min(ttl/2, time.Minute)

	lc.OnShutdown(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-lc.Context().Done():
				return
			case <-ticker.C:
				r.evictIdle(ttl)
			}
		}
	})
	return nil
}

func (r *registry) evictIdle(ttl time.Duration) int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.idle(now, ttl) {
			delete(r.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		r.logger.Info("idle sessions evicted", "count", evicted, "open", len(r.sessions))
	}
	return evicted
}

func (r *registry) mutate(owner, id, pageID uuid.UUID, fn func(*page) error) (*PageView, error) {
	s, err := r.lookup(owner, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.saving {
		return nil, ErrSaveInProgress
	}
	s.lastUsed = r.now()

	p, err := s.find(pageID)
	if err != nil {
		return nil, err
	}

	if err := fn(p); err != nil {
		return nil, err
	}

	v := p.view()
	return &v, nil
}

// lookup hides sessions of other owners behind ErrNotFound.
func (r *registry) lookup(owner, id uuid.UUID) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.Owner != owner {
		return nil, ErrNotFound
	}
	return s, nil
}
