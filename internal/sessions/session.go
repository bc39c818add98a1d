// Package sessions holds in-memory edit sessions over a document's pages.
// A session tracks the persisted and edited raster of every page, decides
// which pages changed, and drives the document save protocol.
package sessions

import (
	"bytes"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/google/uuid"
)

// PageState follows clean -> dirty -> uploading -> clean. A failed upload
// returns the page to dirty with its edits intact.
type PageState string

const (
	StateClean     PageState = "clean"
	StateDirty     PageState = "dirty"
	StateUploading PageState = "uploading"
)

type View struct {
	ID           uuid.UUID  `json:"id"`
	DocumentID   uuid.UUID  `json:"document_id"`
	DocumentName string     `json:"document_name"`
	UpdatedAt    time.Time  `json:"updated_at"`
	Saving       bool       `json:"saving"`
	Pages        []PageView `json:"pages"`
}

type PageView struct {
	PageID     uuid.UUID `json:"page_id"`
	Number     int       `json:"page_number"`
	State      PageState `json:"state"`
	Operations int       `json:"operations"`
	Readable   bool      `json:"readable"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
}

type SaveView struct {
	Saved   int  `json:"saved"`
	Skipped int  `json:"skipped"`
	Session View `json:"session"`
}

type page struct {
	record documents.Page

	// original is the last persisted raster; nil when it failed to decode.
	original    *image.NRGBA
	decodeErr   error
	originalPNG []byte

	previewBase *image.NRGBA
	preview     *image.NRGBA
	previewPNG  []byte

	ops   []transform.Operation
	state PageState
}

func newPage(record documents.Page, original *image.NRGBA, previewSize int) *page {
	p := &page{record: record, original: original, state: StateClean}
	if original != nil {
		p.previewBase = transform.Preview(original, previewSize)
		p.preview = p.previewBase
	}
	return p
}

func (p *page) readable() error {
	if p.original == nil {
		return fmt.Errorf("%w: page %d: %w", ErrPageUnreadable, p.record.Number, p.decodeErr)
	}
	return nil
}

// apply runs op against the preview raster and reclassifies the page by
// comparing preview bytes with the unedited preview.
func (p *page) apply(op transform.Operation) error {
	if err := p.readable(); err != nil {
		return err
	}

	next, err := op.Apply(p.preview)
	if err != nil {
		return err
	}

	p.ops = append(p.ops, op)
	p.preview = next
	return p.classify()
}

func (p *page) revert() {
	p.ops = nil
	p.preview = p.previewBase
	p.state = StateClean
}

func (p *page) classify() error {
	if len(p.ops) == 0 {
		p.state = StateClean
		return nil
	}

	if p.previewPNG == nil {
		enc, err := transform.EncodePNG(p.previewBase)
		if err != nil {
			return err
		}
		p.previewPNG = enc
	}

	enc, err := transform.EncodePNG(p.preview)
	if err != nil {
		return err
	}

	if bytes.Equal(enc, p.previewPNG) {
		p.state = StateClean
	} else {
		p.state = StateDirty
	}
	return nil
}

// render replays every operation on the full-resolution original and
// reports whether the result differs from it byte for byte.
func (p *page) render() (*image.NRGBA, []byte, bool, error) {
	full, err := transform.ApplyAll(p.original, p.ops)
	if err != nil {
		return nil, nil, false, err
	}

	if p.originalPNG == nil {
		enc, err := transform.EncodePNG(p.original)
		if err != nil {
			return nil, nil, false, err
		}
		p.originalPNG = enc
	}

	enc, err := transform.EncodePNG(full)
	if err != nil {
		return nil, nil, false, err
	}
	return full, enc, !bytes.Equal(enc, p.originalPNG), nil
}

// commit makes the saved raster the new original.
func (p *page) commit(record documents.Page, full *image.NRGBA, encoded []byte, previewSize int) {
	p.record = record
	p.original = full
	p.originalPNG = encoded
	p.previewBase = transform.Preview(full, previewSize)
	p.preview = p.previewBase
	p.previewPNG = nil
	p.ops = nil
	p.state = StateClean
}

func (p *page) view() PageView {
	v := PageView{
		PageID:     p.record.ID,
		Number:     p.record.Number,
		State:      p.state,
		Operations: len(p.ops),
		Readable:   p.original != nil,
		Width:      p.record.Width,
		Height:     p.record.Height,
	}
	if p.preview != nil && len(p.ops) > 0 && p.previewBase != nil {
		// Report the projected full-size dimensions of the edited page.
		pb, bb := p.preview.Bounds(), p.previewBase.Bounds()
		v.Width = pb.Dx() * p.record.Width / max(bb.Dx(), 1)
		v.Height = pb.Dy() * p.record.Height / max(bb.Dy(), 1)
	}
	return v
}

// Session is one owner's edit state for one document. mu guards every
// field; the save call to the document repository runs without it while
// saving is set.
type Session struct {
	ID         uuid.UUID
	Owner      uuid.UUID
	DocumentID uuid.UUID

	mu        sync.Mutex
	name      string
	updatedAt time.Time
	pages     []*page
	byID      map[uuid.UUID]*page
	saving    bool
	lastUsed  time.Time
}

func (s *Session) find(pageID uuid.UUID) (*page, error) {
	p, ok := s.byID[pageID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, pageID)
	}
	return p, nil
}

func (s *Session) view() View {
	v := View{
		ID:           s.ID,
		DocumentID:   s.DocumentID,
		DocumentName: s.name,
		UpdatedAt:    s.updatedAt,
		Saving:       s.saving,
		Pages:        make([]PageView, len(s.pages)),
	}
	for i, p := range s.pages {
		v.Pages[i] = p.view()
	}
	return v
}

func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.saving && now.Sub(s.lastUsed) > ttl
}
