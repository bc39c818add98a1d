package records_test

import (
	"net/url"
	"strings"
	"testing"

	"github.com/JaimeStill/docpages/internal/records"
	"github.com/JaimeStill/docpages/pkg/query"
	"github.com/google/uuid"
)

func TestDocumentFiltersFromQuery(t *testing.T) {
	folder := uuid.New()
	tag := uuid.New()

	values := url.Values{
		"name":      {"invoice"},
		"folder_id": {folder.String()},
		"favorite":  {"true"},
		"tag_id":    {tag.String()},
	}

	f := records.DocumentFiltersFromQuery(values)

	if f.Name == nil || *f.Name != "invoice" {
		t.Errorf("Name = %v", f.Name)
	}
	if f.FolderID == nil || *f.FolderID != folder {
		t.Errorf("FolderID = %v", f.FolderID)
	}
	if f.Favorite == nil || !*f.Favorite {
		t.Errorf("Favorite = %v", f.Favorite)
	}
	if f.TagID == nil || *f.TagID != tag {
		t.Errorf("TagID = %v", f.TagID)
	}
}

func TestDocumentFiltersFromQuery_IgnoresMalformed(t *testing.T) {
	f := records.DocumentFiltersFromQuery(url.Values{
		"folder_id": {"not-a-uuid"},
		"favorite":  {"maybe"},
	})

	if f.FolderID != nil || f.Favorite != nil || f.Name != nil || f.TagID != nil {
		t.Errorf("filters = %+v, want empty", f)
	}
}

func TestDocumentFilters_Apply(t *testing.T) {
	pm := query.NewProjectionMap("public", "documents", "d").
		Project("name", "Name").
		Project("folder_id", "FolderId").
		Project("favorite", "Favorite")

	fav := false
	tag := uuid.New()
	f := records.DocumentFilters{Favorite: &fav, TagID: &tag}

	sql, args := f.Apply(query.NewBuilder(pm)).BuildCount()

	for _, want := range []string{"d.favorite = $1", "dt.tag_id = $2"} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql %q missing %q", sql, want)
		}
	}
	if len(args) != 2 || args[0] != false || args[1] != tag {
		t.Errorf("args = %v", args)
	}
}
