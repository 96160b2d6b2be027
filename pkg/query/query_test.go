package query_test

import (
	"testing"
	"time"

	"github.com/guarayo/cuentos/pkg/query"
)

const storyColumns = "s.id, s.title, s.category, s.created_at"

func testProjection() *query.ProjectionMap {
	return query.NewProjectionMap("public", "stories", "s").
		Project("id", "id").
		Project("title", "title").
		Project("category", "category").
		Project("created_at", "createdAt")
}

func ptr(s string) *string { return &s }

func TestProjectionMapTable(t *testing.T) {
	p := testProjection()
	if got, want := p.Table(), "public.stories s"; got != want {
		t.Errorf("Table() = %q, want %q", got, want)
	}
	if got, want := p.From(), "public.stories s"; got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
}

func TestProjectionMapJoin(t *testing.T) {
	p := testProjection().
		Join("public", "users", "u", "LEFT JOIN", "u.id::text = s.owner_id").
		ProjectFrom("u", "email", "ownerEmail")

	want := "public.stories s LEFT JOIN public.users u ON u.id::text = s.owner_id"
	if got := p.From(); got != want {
		t.Errorf("From() = %q, want %q", got, want)
	}
	if got := p.Column("ownerEmail"); got != "u.email" {
		t.Errorf("Column(ownerEmail) = %q, want u.email", got)
	}
}

func TestProjectionMapColumnLookup(t *testing.T) {
	p := testProjection()

	tests := []struct {
		name     string
		viewName string
		want     string
	}{
		{"mapped field", "title", "s.title"},
		{"mapped camel", "createdAt", "s.created_at"},
		{"unmapped passthrough", "unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Column(tt.viewName); got != tt.want {
				t.Errorf("Column(%q) = %q, want %q", tt.viewName, got, tt.want)
			}
		})
	}

	if got := len(p.ColumnList()); got != 4 {
		t.Errorf("ColumnList() length = %d, want 4", got)
	}
}

func TestParseSortFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []query.SortField
	}{
		{"empty string", "", nil},
		{"single ascending", "title", []query.SortField{{Field: "title"}}},
		{"single descending", "-createdAt", []query.SortField{{Field: "createdAt", Descending: true}}},
		{
			"mixed with spaces and gaps",
			" title ,, -createdAt ",
			[]query.SortField{{Field: "title"}, {Field: "createdAt", Descending: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := query.ParseSortFields(tt.input)
			if tt.want == nil {
				if got != nil {
					t.Errorf("ParseSortFields(%q) = %v, want nil", tt.input, got)
				}
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseSortFields(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseSortFields(%q)[%d] = %v, want %v", tt.input, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).Build()

	if want := "SELECT " + storyColumns + " FROM public.stories s"; sql != want {
		t.Errorf("Build() sql = %q, want %q", sql, want)
	}
	if len(args) != 0 {
		t.Errorf("Build() args = %v, want empty", args)
	}
}

func TestBuilderBuildCount(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("category", "legend")
	sql, args := b.BuildCount()

	if want := "SELECT COUNT(*) FROM public.stories s WHERE s.category = $1"; sql != want {
		t.Errorf("BuildCount() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "legend" {
		t.Errorf("BuildCount() args = %v, want [legend]", args)
	}
}

func TestBuilderBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(testProjection()).BuildSingle("id", "abc-123")

	if want := "SELECT " + storyColumns + " FROM public.stories s WHERE s.id = $1"; sql != want {
		t.Errorf("BuildSingle() sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "abc-123" {
		t.Errorf("BuildSingle() args = %v, want [abc-123]", args)
	}
}

func TestBuilderBuildGroupCount(t *testing.T) {
	sql, _ := query.NewBuilder(testProjection()).BuildGroupCount("category")

	want := "SELECT s.category, COUNT(*) FROM public.stories s GROUP BY s.category ORDER BY s.category"
	if sql != want {
		t.Errorf("BuildGroupCount() sql = %q, want %q", sql, want)
	}
}

func TestBuilderKeysetPage(t *testing.T) {
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	b := query.NewBuilder(testProjection(),
		query.SortField{Field: "createdAt", Descending: true},
		query.SortField{Field: "id", Descending: true},
	)
	b.WhereEquals("category", "myth").
		WhereKeyset([]string{"createdAt", "id"}, []any{created, "id-9"}, true)

	sql, args := b.BuildLimit(21)

	want := "SELECT " + storyColumns + " FROM public.stories s" +
		" WHERE s.category = $1 AND (s.created_at, s.id) < ($2, $3)" +
		" ORDER BY s.created_at DESC, s.id DESC LIMIT 21"
	if sql != want {
		t.Errorf("BuildLimit() sql = %q, want %q", sql, want)
	}
	if len(args) != 3 || args[0] != "myth" || args[1] != created || args[2] != "id-9" {
		t.Errorf("BuildLimit() args = %v", args)
	}
}

func TestBuilderKeysetAscending(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereKeyset([]string{"createdAt", "id"}, []any{"t", "i"}, false)
	sql, _ := b.Build()

	want := "SELECT " + storyColumns + " FROM public.stories s WHERE (s.created_at, s.id) > ($1, $2)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}

func TestBuilderKeysetSkipped(t *testing.T) {
	tests := []struct {
		name   string
		values []any
	}{
		{"no cursor", nil},
		{"mismatched length", []any{"only-one"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := query.NewBuilder(testProjection())
			b.WhereKeyset([]string{"createdAt", "id"}, tt.values, true)
			if _, args := b.Build(); len(args) != 0 {
				t.Errorf("args = %v, want empty", args)
			}
		})
	}
}

func TestBuilderWhereEqualsNilSkipped(t *testing.T) {
	var owner *string
	b := query.NewBuilder(testProjection())
	b.WhereEquals("category", nil).WhereEquals("ownerId", owner)

	if _, args := b.Build(); len(args) != 0 {
		t.Errorf("args = %v, want empty", args)
	}
}

func TestBuilderWhereEqualsDereferencesPointers(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("ownerId", ptr("user-1"))

	if _, args := b.Build(); len(args) != 1 || args[0] != "user-1" {
		t.Errorf("args = %v, want [user-1]", args)
	}
}

func TestBuilderWhereContains(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereContains("title", ptr("zorro")).WhereContains("title", ptr(""))
	sql, args := b.Build()

	if want := "SELECT " + storyColumns + " FROM public.stories s WHERE s.title ILIKE $1"; sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 1 || args[0] != "%zorro%" {
		t.Errorf("args = %v, want [%%zorro%%]", args)
	}
}

func TestBuilderWhereSearch(t *testing.T) {
	b := query.NewBuilder(testProjection())
	b.WhereEquals("category", "myth")
	b.WhereSearch(ptr("luna"), "title", "category")
	sql, args := b.Build()

	want := "SELECT " + storyColumns + " FROM public.stories s WHERE s.category = $1 AND (s.title ILIKE $2 OR s.category ILIKE $3)"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 3 || args[1] != "%luna%" || args[2] != "%luna%" {
		t.Errorf("args = %v", args)
	}
}

func TestBuilderOrderByOverridesDefault(t *testing.T) {
	b := query.NewBuilder(testProjection(), query.SortField{Field: "id"})
	b.OrderByFields([]query.SortField{
		{Field: "createdAt", Descending: true},
		{Field: "title"},
	})
	sql, _ := b.Build()

	want := "SELECT " + storyColumns + " FROM public.stories s ORDER BY s.created_at DESC, s.title ASC"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
}
