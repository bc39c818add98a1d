// Package documents keeps a document, its ordered pages, and the bytes
// stored for each page consistent across the blob and record stores.
package documents

import (
	"image"
	"time"

	"github.com/JaimeStill/docpages/internal/records"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type (
	Document = records.Document
	Page     = records.Page
)

// Detail is a document with its pages in page-number order.
type Detail struct {
	Document Document `json:"document"`
	Pages    []Page   `json:"pages"`
}

// CreateCommand creates a document whose pages are numbered 1..N in the
// order of Pages.
type CreateCommand struct {
	Name     string
	FolderID *uuid.UUID
	Pages    []*image.NRGBA
}

type UpdateCommand struct {
	Name     string     `json:"name"`
	Favorite bool       `json:"favorite"`
	FolderID *uuid.UUID `json:"folder_id,omitempty"`
}

func (c UpdateCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Name, validation.Required, validation.Length(1, maxNameLength)),
	)
}

// PageData is a page record with the bytes its image locator resolved to.
type PageData struct {
	Page Page
	Data []byte
}

// PageEdit replaces the raster of an existing page.
type PageEdit struct {
	PageID uuid.UUID
	Image  *image.NRGBA
}

// SaveCommand carries the dirty pages of one document. Expected, when set,
// is the document's updated_at as last observed by the caller; the save is
// rejected with ErrConflict if the document has changed since.
type SaveCommand struct {
	Edits    []PageEdit
	Expected *time.Time
}

// SaveResult reports what a save persisted. Pages holds the new page
// records once the page batch has committed, even when the final timestamp
// write fails.
type SaveResult struct {
	Document *Document `json:"document,omitempty"`
	Pages    []Page    `json:"pages"`
	Uploaded int       `json:"uploaded"`
}
