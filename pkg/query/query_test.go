package query_test

import (
	"strings"
	"testing"

	"github.com/JaimeStill/docpages/pkg/query"
)

func newTestProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "documents", "d").
		Project("id", "ID").
		Project("name", "Name").
		Project("created_at", "CreatedAt")
}

func TestProjectionMap(t *testing.T) {
	pm := newTestProjection()

	if pm.Table() != "public.documents d" {
		t.Errorf("Table() = %q", pm.Table())
	}
	if pm.Columns() != "d.id, d.name, d.created_at" {
		t.Errorf("Columns() = %q", pm.Columns())
	}
	if pm.Column("Name") != "d.name" {
		t.Errorf("Column(Name) = %q", pm.Column("Name"))
	}
	if pm.Column("Unknown") != "Unknown" {
		t.Errorf("Column(Unknown) = %q, want passthrough", pm.Column("Unknown"))
	}
	if len(pm.ColumnList()) != 3 {
		t.Errorf("len(ColumnList()) = %d, want 3", len(pm.ColumnList()))
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		expr string
		want []query.SortField
	}{
		{"", nil},
		{"Name", []query.SortField{{Field: "Name"}}},
		{"-CreatedAt,Name", []query.SortField{{Field: "CreatedAt", Descending: true}, {Field: "Name"}}},
		{" Name , ,-", []query.SortField{{Field: "Name"}}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got := query.ParseSortFields(tt.expr)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d (%v)", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilder_BuildPage(t *testing.T) {
	search := "invoice"
	b := query.NewBuilder(newTestProjection(), query.SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("ID", "owner").
		WhereSearch(&search, "Name")

	sql, args := b.BuildPage(2, 10)

	want := "SELECT d.id, d.name, d.created_at FROM public.documents d WHERE d.id = $1 AND (d.name ILIKE $2) ORDER BY d.created_at DESC LIMIT 10 OFFSET 10"
	if sql != want {
		t.Errorf("BuildPage() =\n%q\nwant\n%q", sql, want)
	}
	if len(args) != 2 || args[1] != "%invoice%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuilder_BuildCount_NoConditions(t *testing.T) {
	sql, args := query.NewBuilder(newTestProjection()).BuildCount()

	if sql != "SELECT COUNT(*) FROM public.documents d" {
		t.Errorf("BuildCount() = %q", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilder_OrderByFields_IgnoresUnknown(t *testing.T) {
	b := query.NewBuilder(newTestProjection(), query.SortField{Field: "CreatedAt"}).
		OrderByFields([]query.SortField{{Field: "Name", Descending: true}, {Field: "password"}})

	sql, _ := b.BuildAll()
	if !strings.HasSuffix(sql, "ORDER BY d.name DESC") {
		t.Errorf("BuildAll() = %q", sql)
	}
}

func TestBuilder_NilConditionsIgnored(t *testing.T) {
	var empty string
	sql, args := query.NewBuilder(newTestProjection()).
		WhereEquals("Name", nil).
		WhereContains("Name", &empty).
		WhereIn("ID", nil).
		BuildCount()

	if strings.Contains(sql, "WHERE") {
		t.Errorf("BuildCount() = %q, want no WHERE", sql)
	}
	if len(args) != 0 {
		t.Errorf("args = %v", args)
	}
}

func TestBuilder_WhereRawAndIn(t *testing.T) {
	sql, args := query.NewBuilder(newTestProjection()).
		WhereIn("ID", []any{"a", "b"}).
		Where("EXISTS (SELECT 1 FROM public.document_tags dt WHERE dt.document_id = d.id AND dt.tag_id = $%d)", "t").
		BuildSingle("Name", "n")

	if !strings.Contains(sql, "d.id IN ($1, $2)") {
		t.Errorf("missing IN clause: %q", sql)
	}
	if !strings.Contains(sql, "dt.tag_id = $3") || !strings.Contains(sql, "d.name = $4") {
		t.Errorf("placeholders misnumbered: %q", sql)
	}
	if len(args) != 4 {
		t.Errorf("len(args) = %d, want 4", len(args))
	}
}
