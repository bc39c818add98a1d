package compose_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/docpages/internal/compose"
	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/identity"
	"github.com/JaimeStill/docpages/internal/transform"
	"github.com/JaimeStill/docpages/pkg/logging"
	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var palette = []color.NRGBA{
	{R: 200, A: 255},
	{G: 200, A: 255},
	{B: 200, A: 255},
	{R: 200, G: 200, A: 255},
	{G: 200, B: 200, A: 255},
}

type fakeDoc struct {
	doc   documents.Document
	pages []documents.PageData
}

type fakeDocs struct {
	mu      sync.Mutex
	owner   uuid.UUID
	docs    map[uuid.UUID]*fakeDoc
	created []documents.CreateCommand
	fresh   []bool
}

func newFakeDocs(owner uuid.UUID) *fakeDocs {
	return &fakeDocs{owner: owner, docs: make(map[uuid.UUID]*fakeDoc)}
}

// add stores a document whose pages are solid fills of the given palette
// indexes; a negative index stores bytes that do not decode.
func (f *fakeDocs) add(t *testing.T, name string, colors ...int) *fakeDoc {
	t.Helper()

	d := &fakeDoc{doc: documents.Document{
		ID: uuid.New(), OwnerID: f.owner, Name: name,
		PageCount: len(colors), UpdatedAt: time.Now(),
	}}
	for i, c := range colors {
		data := []byte("corrupt")
		if c >= 0 {
			enc, err := transform.EncodePNG(solid(40, 30, palette[c]))
			require.NoError(t, err)
			data = enc
		}
		d.pages = append(d.pages, documents.PageData{
			Page: documents.Page{
				ID: uuid.New(), DocumentID: d.doc.ID, Number: i + 1,
				ImageKey: fmt.Sprintf("%s/%d", d.doc.ID, i), Width: 40, Height: 30,
			},
			Data: data,
		})
	}
	f.docs[d.doc.ID] = d
	return d
}

func (f *fakeDocs) lookup(owner, id uuid.UUID) (*fakeDoc, error) {
	d, ok := f.docs[id]
	if !ok || owner != f.owner {
		return nil, documents.ErrNotFound
	}
	return d, nil
}

func (f *fakeDocs) Create(_ context.Context, owner uuid.UUID, cmd documents.CreateCommand) (*documents.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.created = append(f.created, cmd)
	detail := &documents.Detail{Document: documents.Document{
		ID: uuid.New(), OwnerID: owner, Name: cmd.Name, PageCount: len(cmd.Pages),
	}}
	for i, img := range cmd.Pages {
		b := img.Bounds()
		detail.Pages = append(detail.Pages, documents.Page{
			ID: uuid.New(), DocumentID: detail.Document.ID, Number: i + 1,
			Width: b.Dx(), Height: b.Dy(),
		})
	}
	return detail, nil
}

func (f *fakeDocs) Pages(_ context.Context, owner, id uuid.UUID) (*documents.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.lookup(owner, id)
	if err != nil {
		return nil, err
	}
	detail := &documents.Detail{Document: d.doc}
	for _, p := range d.pages {
		detail.Pages = append(detail.Pages, p.Page)
	}
	return detail, nil
}

func (f *fakeDocs) LoadPages(_ context.Context, owner, id uuid.UUID) (*documents.Document, []documents.PageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.lookup(owner, id)
	if err != nil {
		return nil, nil, err
	}
	doc := d.doc
	return &doc, append([]documents.PageData(nil), d.pages...), nil
}

func (f *fakeDocs) PageImage(_ context.Context, owner, id, pageID uuid.UUID, fresh bool) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, err := f.lookup(owner, id)
	if err != nil {
		return nil, err
	}
	f.fresh = append(f.fresh, fresh)
	for _, p := range d.pages {
		if p.Page.ID == pageID {
			return p.Data, nil
		}
	}
	return nil, documents.ErrPageNotFound
}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func newComposer(t *testing.T, docs compose.Documents) compose.System {
	t.Helper()

	pc := config.PagesConfig{PDFDPI: 72}
	require.NoError(t, pc.Finalize())
	return compose.New(docs, pc, logging.Discard())
}

func fills(imgs []*image.NRGBA) []color.NRGBA {
	out := make([]color.NRGBA, len(imgs))
	for i, img := range imgs {
		out[i] = img.NRGBAAt(0, 0)
	}
	return out
}

func TestMerge_DefaultOrder(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	a := fd.add(t, "alpha", 0, 1)
	b := fd.add(t, "beta", 2)
	sys := newComposer(t, fd)

	detail, err := sys.Merge(context.Background(), owner, compose.MergeCommand{
		DocumentIDs: []uuid.UUID{a.doc.ID, b.doc.ID},
	})
	require.NoError(t, err)

	require.Len(t, detail.Pages, 3)
	for i, p := range detail.Pages {
		assert.Equal(t, i+1, p.Number)
	}
	require.Len(t, fd.created, 1)
	assert.Equal(t, []color.NRGBA{palette[0], palette[1], palette[2]}, fills(fd.created[0].Pages))
	assert.Equal(t, "alpha (merged)", fd.created[0].Name)
}

func TestMerge_Arranged(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	a := fd.add(t, "alpha", 0, 1)
	b := fd.add(t, "beta", 2)
	sys := newComposer(t, fd)
	ctx := context.Background()

	plan, err := sys.PlanMerge(ctx, owner, []uuid.UUID{a.doc.ID, b.doc.ID})
	require.NoError(t, err)
	require.Len(t, plan.Items, 3)
	assert.Equal(t, "beta", plan.Items[2].DocumentName)

	detail, err := sys.Merge(ctx, owner, compose.MergeCommand{
		Name:        "combined",
		DocumentIDs: plan.DocumentIDs,
		Pages:       []compose.PageRef{plan.Items[2].PageRef, plan.Items[0].PageRef},
	})
	require.NoError(t, err)

	assert.Len(t, detail.Pages, 2)
	assert.Equal(t, []color.NRGBA{palette[2], palette[0]}, fills(fd.created[0].Pages))
	assert.Equal(t, "combined", fd.created[0].Name)
	assert.Len(t, a.pages, 2, "sources are untouched")
}

func TestMerge_Rejections(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	a := fd.add(t, "alpha", 0)
	b := fd.add(t, "beta", 1)
	sys := newComposer(t, fd)
	ctx := context.Background()

	tests := []struct {
		name string
		cmd  compose.MergeCommand
		want error
	}{
		{"single document", compose.MergeCommand{DocumentIDs: []uuid.UUID{a.doc.ID}}, compose.ErrInsufficientInput},
		{"same document twice", compose.MergeCommand{DocumentIDs: []uuid.UUID{a.doc.ID, a.doc.ID}}, compose.ErrInsufficientInput},
		{"nothing selected", compose.MergeCommand{DocumentIDs: []uuid.UUID{a.doc.ID, b.doc.ID}, Pages: []compose.PageRef{}}, compose.ErrEmptySelection},
		{
			"foreign page",
			compose.MergeCommand{
				DocumentIDs: []uuid.UUID{a.doc.ID, b.doc.ID},
				Pages:       []compose.PageRef{{DocumentID: a.doc.ID, PageID: uuid.New()}},
			},
			compose.ErrUnknownPage,
		},
		{
			"repeated page",
			compose.MergeCommand{
				DocumentIDs: []uuid.UUID{a.doc.ID, b.doc.ID},
				Pages: []compose.PageRef{
					{DocumentID: a.doc.ID, PageID: a.pages[0].Page.ID},
					{DocumentID: a.doc.ID, PageID: a.pages[0].Page.ID},
				},
			},
			compose.ErrUnknownPage,
		},
		{"missing document", compose.MergeCommand{DocumentIDs: []uuid.UUID{a.doc.ID, uuid.New()}}, documents.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sys.Merge(ctx, owner, tt.cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Empty(t, fd.created)
}

func TestMerge_SkipsUndecodablePages(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	a := fd.add(t, "alpha", 0, -1)
	b := fd.add(t, "beta", 2)
	sys := newComposer(t, fd)

	detail, err := sys.Merge(context.Background(), owner, compose.MergeCommand{
		DocumentIDs: []uuid.UUID{a.doc.ID, b.doc.ID},
	})
	require.NoError(t, err)
	assert.Len(t, detail.Pages, 2)

	c := fd.add(t, "gamma", -1)
	d := fd.add(t, "delta", -1)
	_, err = sys.Merge(context.Background(), owner, compose.MergeCommand{
		DocumentIDs: []uuid.UUID{c.doc.ID, d.doc.ID},
	})
	assert.ErrorIs(t, err, compose.ErrNoExportableContent)
}

func TestMerge_CanceledBeforeCommit(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	a := fd.add(t, "alpha", 0)
	b := fd.add(t, "beta", 1)
	sys := newComposer(t, fd)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sys.Merge(ctx, owner, compose.MergeCommand{DocumentIDs: []uuid.UUID{a.doc.ID, b.doc.ID}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, fd.created)
}

func TestExtract_SortsByPageNumber(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	src := fd.add(t, "statement", 0, 1, 2, 3, 4)
	sys := newComposer(t, fd)

	detail, err := sys.Extract(context.Background(), owner, compose.ExtractCommand{
		DocumentID: src.doc.ID,
		PageIDs:    []uuid.UUID{src.pages[3].Page.ID, src.pages[1].Page.ID},
	})
	require.NoError(t, err)

	require.Len(t, detail.Pages, 2)
	assert.Equal(t, 1, detail.Pages[0].Number)
	assert.Equal(t, 2, detail.Pages[1].Number)
	assert.Equal(t, []color.NRGBA{palette[1], palette[3]}, fills(fd.created[0].Pages))
	assert.Equal(t, "statement (extract)", fd.created[0].Name)
	assert.Equal(t, []bool{true, true}, fd.fresh, "page reads bypass caches")
	assert.Len(t, src.pages, 5)
}

func TestExtract_Rejections(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	src := fd.add(t, "statement", 0, 1)
	sys := newComposer(t, fd)
	ctx := context.Background()

	_, err := sys.Extract(ctx, owner, compose.ExtractCommand{DocumentID: src.doc.ID})
	assert.ErrorIs(t, err, compose.ErrEmptySelection)

	_, err = sys.Extract(ctx, owner, compose.ExtractCommand{DocumentID: src.doc.ID, PageIDs: []uuid.UUID{uuid.New()}})
	assert.ErrorIs(t, err, compose.ErrUnknownPage)

	_, err = sys.Extract(ctx, uuid.New(), compose.ExtractCommand{DocumentID: src.doc.ID, PageIDs: []uuid.UUID{src.pages[0].Page.ID}})
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestExport_PDF(t *testing.T) {
	tests := []struct {
		name    string
		colors  []int
		pages   int
		skipped int
	}{
		{"every page", []int{0, 1, 2}, 3, 0},
		{"one undecodable page", []int{0, -1, 2}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := uuid.New()
			fd := newFakeDocs(owner)
			src := fd.add(t, "scan", tt.colors...)
			sys := newComposer(t, fd)

			out, err := sys.Export(context.Background(), owner, src.doc.ID, compose.FormatPDF)
			require.NoError(t, err)

			assert.Equal(t, tt.pages, out.Pages)
			assert.Equal(t, tt.skipped, out.Skipped)
			require.Len(t, out.Files, 1)
			assert.Equal(t, "scan.pdf", out.Files[0].Name)
			assert.Equal(t, "application/pdf", out.Files[0].ContentType)

			count, err := api.PageCount(bytes.NewReader(out.Files[0].Data), model.NewDefaultConfiguration())
			require.NoError(t, err)
			assert.Equal(t, tt.pages, count)
		})
	}
}

func TestExport_Images(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	multi := fd.add(t, "Q3/report: draft", 0, 1)
	single := fd.add(t, "receipt", 2)
	sys := newComposer(t, fd)
	ctx := context.Background()

	out, err := sys.Export(ctx, owner, multi.doc.ID, compose.FormatPNG)
	require.NoError(t, err)
	require.Len(t, out.Files, 2)
	assert.Equal(t, "Q3report draft_1.png", out.Files[0].Name)
	assert.Equal(t, "Q3report draft_2.png", out.Files[1].Name)

	img, format, err := transform.Decode(out.Files[1].Data)
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, palette[1], img.NRGBAAt(0, 0))

	out, err = sys.Export(ctx, owner, single.doc.ID, compose.FormatJPEG)
	require.NoError(t, err)
	require.Len(t, out.Files, 1)
	assert.Equal(t, "receipt.jpg", out.Files[0].Name)
	assert.Equal(t, "image/jpeg", out.Files[0].ContentType)
}

func TestExport_Rejections(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	broken := fd.add(t, "broken", -1, -1)
	sys := newComposer(t, fd)
	ctx := context.Background()

	_, err := sys.Export(ctx, owner, broken.doc.ID, compose.FormatPDF)
	assert.ErrorIs(t, err, compose.ErrNoExportableContent)

	_, err = sys.Export(ctx, owner, broken.doc.ID, compose.Format("tiff"))
	assert.ErrorIs(t, err, compose.ErrUnsupportedFormat)
}

func TestHandler_ExportZipsImages(t *testing.T) {
	owner := uuid.New()
	fd := newFakeDocs(owner)
	src := fd.add(t, "scan", 0, 1, 2)
	h := newComposer(t, fd).Handler()

	req := httptest.NewRequest(http.MethodPost, "/compose/export/"+src.doc.ID.String()+"?format=png", nil)
	req.SetPathValue("id", src.doc.ID.String())
	req.Header.Set(identity.Header, owner.String())
	rec := httptest.NewRecorder()

	h.Export(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	assert.Equal(t, "3", rec.Header().Get("X-Export-Pages"))

	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 3)
	assert.Equal(t, "scan_1.png", zr.File[0].Name)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"invoice", "invoice"},
		{"a/b\\c", "abc"},
		{`what?*"<>|`, "what"},
		{"  spaced  ", "spaced"},
		{"tab\there", "tabhere"},
		{"..", "document"},
		{"", "document"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, compose.SanitizeFilename(tt.in))
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{compose.ErrInsufficientInput, http.StatusBadRequest},
		{compose.ErrEmptySelection, http.StatusBadRequest},
		{compose.ErrUnsupportedFormat, http.StatusBadRequest},
		{compose.ErrNoExportableContent, http.StatusUnprocessableEntity},
		{fmt.Errorf("wrap: %w", documents.ErrNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, compose.MapHTTPStatus(tt.err))
		})
	}
}
