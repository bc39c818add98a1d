package documents_test

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/docpages/internal/blobs"
	"github.com/JaimeStill/docpages/internal/config"
	"github.com/JaimeStill/docpages/internal/documents"
	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/pkg/lifecycle"
	"github.com/JaimeStill/docpages/pkg/logging"
	"github.com/JaimeStill/docpages/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecords struct {
	mu    sync.Mutex
	docs  map[uuid.UUID]*records.Document
	pages map[uuid.UUID][]records.Page

	updateCalls [][]records.PageUpdate
	touchCalls  int

	createErr error
	updateErr error
	touchErr  error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		docs:  make(map[uuid.UUID]*records.Document),
		pages: make(map[uuid.UUID][]records.Page),
	}
}

func (f *fakeRecords) CreateDocument(_ context.Context, owner uuid.UUID, nd records.NewDocument, pages []records.NewPage) (*records.Document, []records.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, nil, f.createErr
	}

	now := time.Now()
	doc := &records.Document{
		ID: nd.ID, OwnerID: owner, Name: nd.Name, FolderID: nd.FolderID,
		PageCount: len(pages), CreatedAt: now, UpdatedAt: now,
	}
	out := make([]records.Page, len(pages))
	for i, np := range pages {
		doc.SizeBytes += np.SizeBytes
		out[i] = records.Page{
			ID: uuid.New(), DocumentID: doc.ID, Number: i + 1,
			ImageKey: np.ImageKey, ThumbnailKey: np.ThumbnailKey,
			SizeBytes: np.SizeBytes, Width: np.Width, Height: np.Height, CreatedAt: now,
		}
	}
	f.docs[doc.ID] = doc
	f.pages[doc.ID] = out

	d := *doc
	return &d, append([]records.Page(nil), out...), nil
}

func (f *fakeRecords) ListDocuments(_ context.Context, owner uuid.UUID, page pagination.PageRequest, _ records.DocumentFilters) (*pagination.PageResult[records.Document], error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var docs []records.Document
	for _, d := range f.docs {
		if d.OwnerID == owner {
			docs = append(docs, *d)
		}
	}
	result := pagination.NewPageResult(docs, len(docs), 1, max(len(docs), 1))
	return &result, nil
}

func (f *fakeRecords) FindDocument(_ context.Context, owner, id uuid.UUID) (*records.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, records.ErrNotFound
	}
	out := *d
	return &out, nil
}

func (f *fakeRecords) UpdateDocument(_ context.Context, owner, id uuid.UUID, u records.DocumentUpdate) (*records.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, records.ErrNotFound
	}
	d.Name, d.Favorite, d.FolderID = u.Name, u.Favorite, u.FolderID
	d.UpdatedAt = d.UpdatedAt.Add(time.Second)
	out := *d
	return &out, nil
}

func (f *fakeRecords) DeleteDocument(_ context.Context, owner, id uuid.UUID) ([]records.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, records.ErrNotFound
	}
	pages := f.pages[id]
	delete(f.docs, id)
	delete(f.pages, id)
	return pages, nil
}

func (f *fakeRecords) ListPages(_ context.Context, owner, id uuid.UUID) ([]records.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return []records.Page{}, nil
	}
	out := append([]records.Page(nil), f.pages[id]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (f *fakeRecords) FindPage(_ context.Context, owner, id, pageID uuid.UUID) (*records.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	d, ok := f.docs[id]
	if !ok || d.OwnerID != owner {
		return nil, records.ErrNotFound
	}
	for _, p := range f.pages[id] {
		if p.ID == pageID {
			out := p
			return &out, nil
		}
	}
	return nil, records.ErrNotFound
}

func (f *fakeRecords) UpdatePages(_ context.Context, owner, id uuid.UUID, updates []records.PageUpdate, expected *time.Time) ([]records.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.updateCalls = append(f.updateCalls, updates)
	if f.updateErr != nil {
		return nil, f.updateErr
	}

	d := f.docs[id]
	if expected != nil && !d.UpdatedAt.Equal(*expected) {
		return nil, records.ErrConflict
	}

	var out []records.Page
	for _, u := range updates {
		for i, p := range f.pages[id] {
			if p.ID == u.PageID {
				p.ImageKey, p.ThumbnailKey, p.SizeBytes = u.ImageKey, u.ThumbnailKey, u.SizeBytes
				p.Width, p.Height = u.Width, u.Height
				f.pages[id][i] = p
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeRecords) TouchDocument(_ context.Context, owner, id uuid.UUID) (*records.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.touchCalls++
	if f.touchErr != nil {
		return nil, f.touchErr
	}

	d := f.docs[id]
	d.UpdatedAt = d.UpdatedAt.Add(time.Second)
	d.SizeBytes = 0
	for _, p := range f.pages[id] {
		d.SizeBytes += p.SizeBytes
	}
	out := *d
	return &out, nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	data    map[string][]byte
	puts    int
	bypass  []bool
	failPut bool
	putErrN int
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{data: make(map[string][]byte)}
}

func (b *fakeBlobs) Put(_ context.Context, documentID uuid.UUID, kind blobs.Kind, _ string, data []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.puts++
	if b.failPut && b.puts > b.putErrN {
		return "", errors.New("blob store unavailable")
	}
	locator := fmt.Sprintf("%s/%s/%s.jpg", kind, documentID, uuid.NewString())
	b.data[locator] = data
	return locator, nil
}

func (b *fakeBlobs) Get(_ context.Context, locator string, bypassCache bool) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bypass = append(b.bypass, bypassCache)
	data, ok := b.data[locator]
	if !ok {
		return nil, blobs.ErrNotFound
	}
	return data, nil
}

func (b *fakeBlobs) Delete(_ context.Context, locator string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.data[locator]; !ok {
		return blobs.ErrNotFound
	}
	delete(b.data, locator)
	return nil
}

type fakeCleanup struct {
	mu       sync.Mutex
	enqueued map[string][]string
}

func newFakeCleanup() *fakeCleanup {
	return &fakeCleanup{enqueued: make(map[string][]string)}
}

func (c *fakeCleanup) Enqueue(_ context.Context, reason string, locators ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.enqueued[reason] = append(c.enqueued[reason], locators...)
	return nil
}

func (c *fakeCleanup) Start(*lifecycle.Coordinator) error { return nil }

func (c *fakeCleanup) get(reason string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enqueued[reason]
}

type fixture struct {
	sys     documents.System
	records *fakeRecords
	blobs   *fakeBlobs
	cleanup *fakeCleanup
	owner   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	pages := config.PagesConfig{}
	require.NoError(t, pages.Finalize())

	f := &fixture{
		records: newFakeRecords(),
		blobs:   newFakeBlobs(),
		cleanup: newFakeCleanup(),
		owner:   uuid.New(),
	}
	f.sys = documents.New(f.records, f.blobs, f.cleanup, pages, logging.Discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
	return f
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

func (f *fixture) create(t *testing.T, n int) *documents.Detail {
	t.Helper()

	imgs := make([]*image.NRGBA, n)
	for i := range imgs {
		imgs[i] = solid(40+i, 30, color.NRGBA{R: uint8(50 * i), G: 100, B: 150, A: 255})
	}

	detail, err := f.sys.Create(context.Background(), f.owner, documents.CreateCommand{Name: "scan", Pages: imgs})
	require.NoError(t, err)
	return detail
}

func TestCreate_NumbersPagesInOrder(t *testing.T) {
	f := newFixture(t)

	detail := f.create(t, 3)

	require.Len(t, detail.Pages, 3)
	assert.Equal(t, 3, detail.Document.PageCount)
	assert.Equal(t, 6, f.blobs.puts, "one image and one thumbnail per page")

	var size int64
	for i, p := range detail.Pages {
		assert.Equal(t, i+1, p.Number)
		assert.Equal(t, 40+i, p.Width)
		require.NotNil(t, p.ThumbnailKey)
		size += p.SizeBytes
	}
	assert.Equal(t, size, detail.Document.SizeBytes)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.Create(ctx, f.owner, documents.CreateCommand{Name: "", Pages: []*image.NRGBA{solid(2, 2, color.NRGBA{A: 255})}})
	assert.ErrorIs(t, err, documents.ErrValidation)

	_, err = f.sys.Create(ctx, f.owner, documents.CreateCommand{Name: "empty"})
	assert.ErrorIs(t, err, documents.ErrNoPages)
	assert.Zero(t, f.blobs.puts)
}

func TestCreate_RecordFailureDiscardsUploads(t *testing.T) {
	f := newFixture(t)
	f.records.createErr = errors.New("connection reset")

	_, err := f.sys.Create(context.Background(), f.owner, documents.CreateCommand{
		Name:  "scan",
		Pages: []*image.NRGBA{solid(8, 8, color.NRGBA{A: 255}), solid(8, 8, color.NRGBA{A: 255})},
	})

	require.ErrorIs(t, err, documents.ErrRemoteIO)
	assert.Len(t, f.cleanup.get("create failed"), 4)
}

func TestSavePages_OnlyChangedPage(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 3)
	putsAfterCreate := f.blobs.puts

	target := detail.Pages[1]
	result, err := f.sys.SavePages(context.Background(), f.owner, detail.Document.ID, documents.SaveCommand{
		Edits: []documents.PageEdit{{PageID: target.ID, Image: solid(60, 20, color.NRGBA{R: 255, A: 255})}},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, f.blobs.puts-putsAfterCreate, "exactly one image and one thumbnail upload")
	require.Len(t, f.records.updateCalls, 1, "exactly one page batch write")
	require.Len(t, f.records.updateCalls[0], 1)
	assert.Equal(t, target.ID, f.records.updateCalls[0][0].PageID)
	assert.Equal(t, 1, f.records.touchCalls, "exactly one timestamp write")

	require.Len(t, result.Pages, 1)
	assert.NotEqual(t, target.ImageKey, result.Pages[0].ImageKey, "edited bytes get a new locator")
	assert.Equal(t, 60, result.Pages[0].Width)
	require.NotNil(t, result.Document)
	assert.True(t, result.Document.UpdatedAt.After(detail.Document.UpdatedAt))

	superseded := f.cleanup.get("pages replaced")
	assert.ElementsMatch(t, []string{target.ImageKey, *target.ThumbnailKey}, superseded)
}

func TestSavePages_NoEditsWritesNothing(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 2)

	result, err := f.sys.SavePages(context.Background(), f.owner, detail.Document.ID, documents.SaveCommand{})
	require.NoError(t, err)

	assert.Empty(t, result.Pages)
	assert.Empty(t, f.records.updateCalls)
	assert.Zero(t, f.records.touchCalls)
}

func TestSavePages_ConflictBeforeUpload(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 2)
	puts := f.blobs.puts

	stale := detail.Document.UpdatedAt.Add(-time.Minute)
	_, err := f.sys.SavePages(context.Background(), f.owner, detail.Document.ID, documents.SaveCommand{
		Edits:    []documents.PageEdit{{PageID: detail.Pages[0].ID, Image: solid(4, 4, color.NRGBA{A: 255})}},
		Expected: &stale,
	})

	require.ErrorIs(t, err, documents.ErrConflict)
	assert.Equal(t, http.StatusConflict, documents.MapHTTPStatus(err))
	assert.Equal(t, puts, f.blobs.puts)
	assert.Empty(t, f.records.updateCalls)
}

func TestSavePages_UploadFailureLeavesRecordsUntouched(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 2)

	f.blobs.failPut = true
	f.blobs.putErrN = f.blobs.puts + 1

	_, err := f.sys.SavePages(context.Background(), f.owner, detail.Document.ID, documents.SaveCommand{
		Edits: []documents.PageEdit{{PageID: detail.Pages[0].ID, Image: solid(4, 4, color.NRGBA{A: 255})}},
	})

	require.ErrorIs(t, err, documents.ErrRemoteIO)
	assert.Empty(t, f.records.updateCalls)
	assert.Zero(t, f.records.touchCalls)
	assert.Len(t, f.cleanup.get("save failed"), 1, "the image that did upload is discarded")
}

func TestSavePages_BatchFailureDiscardsUploads(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 2)
	f.records.updateErr = errors.New("deadlock detected")

	_, err := f.sys.SavePages(context.Background(), f.owner, detail.Document.ID, documents.SaveCommand{
		Edits: []documents.PageEdit{
			{PageID: detail.Pages[0].ID, Image: solid(4, 4, color.NRGBA{A: 255})},
			{PageID: detail.Pages[1].ID, Image: solid(4, 4, color.NRGBA{B: 255, A: 255})},
		},
	})

	require.ErrorIs(t, err, documents.ErrRemoteIO)
	assert.Len(t, f.cleanup.get("save failed"), 4)
	assert.Zero(t, f.records.touchCalls)
}

func TestSavePages_TouchFailureReportsCommittedPages(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 1)
	f.records.touchErr = errors.New("timeout")

	result, err := f.sys.SavePages(context.Background(), f.owner, detail.Document.ID, documents.SaveCommand{
		Edits: []documents.PageEdit{{PageID: detail.Pages[0].ID, Image: solid(4, 4, color.NRGBA{A: 255})}},
	})

	require.ErrorIs(t, err, documents.ErrRemoteIO)
	require.NotNil(t, result)
	assert.Len(t, result.Pages, 1)
	assert.Nil(t, result.Document)
}

func TestSavePages_RejectsUnknownAndDuplicatePages(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 1)
	ctx := context.Background()
	img := solid(4, 4, color.NRGBA{A: 255})

	_, err := f.sys.SavePages(ctx, f.owner, detail.Document.ID, documents.SaveCommand{
		Edits: []documents.PageEdit{{PageID: uuid.New(), Image: img}},
	})
	assert.ErrorIs(t, err, documents.ErrPageNotFound)

	id := detail.Pages[0].ID
	_, err = f.sys.SavePages(ctx, f.owner, detail.Document.ID, documents.SaveCommand{
		Edits: []documents.PageEdit{{PageID: id, Image: img}, {PageID: id, Image: img}},
	})
	assert.ErrorIs(t, err, documents.ErrValidation)
}

func TestLoadPages_OrderedAndCacheBypassed(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 4)

	doc, pages, err := f.sys.LoadPages(context.Background(), f.owner, detail.Document.ID)
	require.NoError(t, err)

	assert.Equal(t, detail.Document.ID, doc.ID)
	require.Len(t, pages, 4)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Page.Number)
		assert.NotEmpty(t, p.Data)
	}

	require.Len(t, f.blobs.bypass, 4)
	for _, b := range f.blobs.bypass {
		assert.True(t, b)
	}
}

func TestLoadPages_ConsistencyViolation(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 2)
	f.records.docs[detail.Document.ID].PageCount = 3

	_, _, err := f.sys.LoadPages(context.Background(), f.owner, detail.Document.ID)
	assert.ErrorIs(t, err, documents.ErrConsistencyViolation)
}

func TestOwnerScoping(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 1)

	_, err := f.sys.Find(context.Background(), uuid.New(), detail.Document.ID)
	assert.ErrorIs(t, err, documents.ErrNotFound)

	_, err = f.sys.PageImage(context.Background(), uuid.New(), detail.Document.ID, detail.Pages[0].ID, false)
	assert.ErrorIs(t, err, documents.ErrPageNotFound)
}

func TestDelete_SchedulesBlobCleanup(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 2)

	require.NoError(t, f.sys.Delete(context.Background(), f.owner, detail.Document.ID))

	assert.Len(t, f.cleanup.get("document deleted"), 4)

	_, err := f.sys.Find(context.Background(), f.owner, detail.Document.ID)
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestUpdate_Validates(t *testing.T) {
	f := newFixture(t)
	detail := f.create(t, 1)

	_, err := f.sys.Update(context.Background(), f.owner, detail.Document.ID, documents.UpdateCommand{Name: ""})
	assert.ErrorIs(t, err, documents.ErrValidation)

	doc, err := f.sys.Update(context.Background(), f.owner, detail.Document.ID, documents.UpdateCommand{Name: "renamed", Favorite: true})
	require.NoError(t, err)
	assert.Equal(t, "renamed", doc.Name)
	assert.True(t, doc.Favorite)
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{documents.ErrNotFound, http.StatusNotFound},
		{documents.ErrPageNotFound, http.StatusNotFound},
		{documents.ErrConflict, http.StatusConflict},
		{documents.ErrValidation, http.StatusBadRequest},
		{fmt.Errorf("%w: boom", documents.ErrRemoteIO), http.StatusBadGateway},
		{documents.ErrConsistencyViolation, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, documents.MapHTTPStatus(tt.err), tt.err.Error())
	}
}
