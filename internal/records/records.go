// Package records persists document, page, folder, and tag metadata in
// PostgreSQL. Every operation is scoped to an explicit owner identity.
package records

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	Name      string     `json:"name"`
	FolderID  *uuid.UUID `json:"folder_id,omitempty"`
	Favorite  bool       `json:"favorite"`
	PageCount int        `json:"page_count"`
	SizeBytes int64      `json:"size_bytes"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Page locators are storage keys; they change whenever page bytes change.
type Page struct {
	ID           uuid.UUID `json:"id"`
	DocumentID   uuid.UUID `json:"document_id"`
	Number       int       `json:"page_number"`
	ImageKey     string    `json:"image_key"`
	ThumbnailKey *string   `json:"thumbnail_key,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	CreatedAt    time.Time `json:"created_at"`
}

type Folder struct {
	ID        uuid.UUID  `json:"id"`
	OwnerID   uuid.UUID  `json:"owner_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type Tag struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	Color     *string   `json:"color,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDocument is the document half of an atomic create. A zero ID is
// replaced with a generated one; callers that upload page bytes first
// supply the ID their locators were minted under.
type NewDocument struct {
	ID       uuid.UUID
	Name     string
	FolderID *uuid.UUID
}

// NewPage is numbered by its position in the create call.
type NewPage struct {
	ImageKey     string
	ThumbnailKey *string
	SizeBytes    int64
	Width        int
	Height       int
}

// DocumentUpdate replaces every mutable metadata field.
type DocumentUpdate struct {
	Name     string
	Favorite bool
	FolderID *uuid.UUID
}

// PageUpdate points an existing page at newly uploaded bytes.
type PageUpdate struct {
	PageID       uuid.UUID
	ImageKey     string
	ThumbnailKey *string
	SizeBytes    int64
	Width        int
	Height       int
}

type FolderCommand struct {
	Name     string
	ParentID *uuid.UUID
}

type TagCommand struct {
	Name  string
	Color *string
}
