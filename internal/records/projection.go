package records

import (
	"net/url"

	"github.com/JaimeStill/docpages/pkg/query"
	"github.com/JaimeStill/docpages/pkg/repository"
	"github.com/google/uuid"
)

var documentProjection = query.NewProjectionMap("public", "documents", "d").
	Project("id", "Id").
	Project("owner_id", "OwnerId").
	Project("name", "Name").
	Project("folder_id", "FolderId").
	Project("favorite", "Favorite").
	Project("page_count", "PageCount").
	Project("size_bytes", "SizeBytes").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var documentDefaultSort = query.SortField{Field: "UpdatedAt", Descending: true}

var pageProjection = query.NewProjectionMap("public", "pages", "p").
	Project("id", "Id").
	Project("document_id", "DocumentId").
	Project("page_number", "Number").
	Project("image_key", "ImageKey").
	Project("thumbnail_key", "ThumbnailKey").
	Project("size_bytes", "SizeBytes").
	Project("width", "Width").
	Project("height", "Height").
	Project("created_at", "CreatedAt")

var folderProjection = query.NewProjectionMap("public", "folders", "f").
	Project("id", "Id").
	Project("owner_id", "OwnerId").
	Project("parent_id", "ParentId").
	Project("name", "Name").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var tagProjection = query.NewProjectionMap("public", "tags", "t").
	Project("id", "Id").
	Project("owner_id", "OwnerId").
	Project("name", "Name").
	Project("color", "Color").
	Project("created_at", "CreatedAt")

const (
	documentColumns = "id, owner_id, name, folder_id, favorite, page_count, size_bytes, created_at, updated_at"
	pageColumns     = "id, document_id, page_number, image_key, thumbnail_key, size_bytes, width, height, created_at"
	folderColumns   = "id, owner_id, parent_id, name, created_at, updated_at"
	tagColumns      = "id, owner_id, name, color, created_at"
)

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.OwnerID,
		&d.Name,
		&d.FolderID,
		&d.Favorite,
		&d.PageCount,
		&d.SizeBytes,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	return d, err
}

func scanPage(s repository.Scanner) (Page, error) {
	var p Page
	err := s.Scan(
		&p.ID,
		&p.DocumentID,
		&p.Number,
		&p.ImageKey,
		&p.ThumbnailKey,
		&p.SizeBytes,
		&p.Width,
		&p.Height,
		&p.CreatedAt,
	)
	return p, err
}

func scanFolder(s repository.Scanner) (Folder, error) {
	var f Folder
	err := s.Scan(&f.ID, &f.OwnerID, &f.ParentID, &f.Name, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func scanTag(s repository.Scanner) (Tag, error) {
	var t Tag
	err := s.Scan(&t.ID, &t.OwnerID, &t.Name, &t.Color, &t.CreatedAt)
	return t, err
}

// DocumentFilters narrows document listings.
type DocumentFilters struct {
	Name     *string
	FolderID *uuid.UUID
	Favorite *bool
	TagID    *uuid.UUID
}

// DocumentFiltersFromQuery reads name, folder_id, favorite, and tag_id.
// Malformed identifiers and booleans are ignored.
func DocumentFiltersFromQuery(values url.Values) DocumentFilters {
	var f DocumentFilters

	if n := values.Get("name"); n != "" {
		f.Name = &n
	}
	if id, err := uuid.Parse(values.Get("folder_id")); err == nil {
		f.FolderID = &id
	}
	switch values.Get("favorite") {
	case "true":
		v := true
		f.Favorite = &v
	case "false":
		v := false
		f.Favorite = &v
	}
	if id, err := uuid.Parse(values.Get("tag_id")); err == nil {
		f.TagID = &id
	}

	return f
}

func (f DocumentFilters) Apply(b *query.Builder) *query.Builder {
	b.WhereContains("Name", f.Name)

	if f.FolderID != nil {
		b.WhereEquals("FolderId", *f.FolderID)
	}
	if f.Favorite != nil {
		b.WhereEquals("Favorite", *f.Favorite)
	}
	if f.TagID != nil {
		b.Where(
			"EXISTS (SELECT 1 FROM public.document_tags dt WHERE dt.document_id = d.id AND dt.tag_id = $%d)",
			*f.TagID,
		)
	}
	return b
}
