package listing_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/listing"
	"github.com/guarayo/cuentos/internal/stories"
)

var (
	t1 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 = t1.Add(24 * time.Hour)
	t3 = t2.Add(24 * time.Hour)
)

func story(title string, likes int, created time.Time) stories.Story {
	return stories.Story{
		ID:        uuid.New(),
		Title:     title,
		Body:      "cuerpo",
		Author:    "anónimo",
		Category:  stories.Traditional,
		CreatedAt: created,
		LikeCount: likes,
	}
}

func titles(list []stories.Story) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.Title
	}
	return out
}

func TestViewExampleScenario(t *testing.T) {
	all := []stories.Story{
		story("El Tigre", 3, t1),
		story("La Luna", 5, t2),
	}

	got := listing.View(all, listing.Query{Text: "tigre", Sort: listing.Relevance})
	if want := []string{"El Tigre"}; !slices.Equal(titles(got), want) {
		t.Errorf("relevance view = %v, want %v", titles(got), want)
	}

	got = listing.View(all, listing.Query{Sort: listing.Likes})
	if want := []string{"La Luna", "El Tigre"}; !slices.Equal(titles(got), want) {
		t.Errorf("likes view = %v, want %v", titles(got), want)
	}
}

func TestViewFilter(t *testing.T) {
	tiger := story("El Tigre", 0, t1)
	moon := story("La Luna", 0, t2)
	moon.Body = "Un TIGRE miraba la luna"
	river := story("El Río", 0, t3)
	river.Author = "Tigresa Paz"
	river.Category = stories.Myth
	owl := story("El Búho", 0, t3)

	all := []stories.Story{tiger, moon, river, owl}

	tests := []struct {
		name  string
		query listing.Query
		want  []string
	}{
		{"empty query keeps all", listing.Query{}, []string{"El Tigre", "La Luna", "El Río", "El Búho"}},
		{"title body or author", listing.Query{Text: "TiGrE"}, []string{"El Tigre", "La Luna", "El Río"}},
		{"category only", listing.Query{Category: stories.Myth}, []string{"El Río"}},
		{"text and category", listing.Query{Text: "tigre", Category: stories.Traditional}, []string{"El Tigre", "La Luna"}},
		{"no match", listing.Query{Text: "jaguar"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := titles(listing.View(all, tt.query))
			if !slices.Equal(got, tt.want) {
				t.Errorf("View() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewRelevance(t *testing.T) {
	all := []stories.Story{
		story("Cuento del río", 9, t1),
		story("Luna llena", 1, t1),
		story("La luna y el sol", 4, t1),
		story("Sin coincidencia", 2, t1),
	}
	all[0].Body = "la luna en el agua"
	all[3].Author = "Luna Pérez"

	got := titles(listing.View(all, listing.Query{Text: "luna", Sort: listing.Relevance}))
	want := []string{"La luna y el sol", "Luna llena", "Cuento del río", "Sin coincidencia"}
	if !slices.Equal(got, want) {
		t.Errorf("View() = %v, want %v", got, want)
	}
}

func TestViewSortStability(t *testing.T) {
	a := story("A", 2, t1)
	b := story("B", 2, t1)
	c := story("C", 7, t2)
	all := []stories.Story{a, b, c}

	tests := []struct {
		name string
		sort listing.Sort
		want []string
	}{
		{"date", listing.Date, []string{"C", "A", "B"}},
		{"likes", listing.Likes, []string{"C", "A", "B"}},
		{"views ties keep order", listing.Views, []string{"A", "B", "C"}},
		{"unknown passes through", listing.Sort("random"), []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titles(listing.View(all, listing.Query{Sort: tt.sort})); !slices.Equal(got, tt.want) {
				t.Errorf("View() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestViewViewsDescending(t *testing.T) {
	quiet := story("Poco leído", 9, t3)
	quiet.ViewCount = 3
	popular := story("Muy leído", 0, t1)
	popular.ViewCount = 120
	middle := story("Algo leído", 4, t2)
	middle.ViewCount = 40
	tied := story("También algo leído", 1, t3)
	tied.ViewCount = 40

	all := []stories.Story{quiet, middle, popular, tied}

	got := titles(listing.View(all, listing.Query{Sort: listing.Views}))
	want := []string{"Muy leído", "Algo leído", "También algo leído", "Poco leído"}
	if !slices.Equal(got, want) {
		t.Errorf("View() = %v, want %v", got, want)
	}
}

func TestViewDateOrder(t *testing.T) {
	all := []stories.Story{story("a", 0, t2), story("b", 0, t1), story("c", 0, t3), story("d", 0, t2)}

	got := listing.View(all, listing.Query{Sort: listing.Date})
	for i := 1; i < len(got); i++ {
		if got[i-1].CreatedAt.Before(got[i].CreatedAt) {
			t.Fatalf("not descending at %d: %v", i, titles(got))
		}
	}
	if want := []string{"c", "a", "d", "b"}; !slices.Equal(titles(got), want) {
		t.Errorf("View() = %v, want %v", titles(got), want)
	}
}

func TestViewTitleCollation(t *testing.T) {
	all := []stories.Story{
		story("Zorro", 0, t1),
		story("Ñandú", 0, t1),
		story("árbol", 0, t1),
		story("Nube", 0, t1),
		story("Búho", 0, t1),
	}

	got := titles(listing.View(all, listing.Query{Sort: listing.Title}))
	want := []string{"árbol", "Búho", "Nube", "Ñandú", "Zorro"}
	if !slices.Equal(got, want) {
		t.Errorf("View() = %v, want %v", got, want)
	}
}

func TestViewDoesNotReorderInput(t *testing.T) {
	all := []stories.Story{story("b", 1, t1), story("a", 5, t2)}
	before := titles(all)

	listing.View(all, listing.Query{Sort: listing.Likes})
	listing.View(all, listing.Query{Sort: listing.Title})

	if !slices.Equal(titles(all), before) {
		t.Errorf("input reordered: %v, want %v", titles(all), before)
	}
}

func TestViewDeterministic(t *testing.T) {
	all := []stories.Story{story("x", 1, t1), story("y", 1, t1), story("z", 1, t1)}
	q := listing.Query{Sort: listing.Relevance}

	first := titles(listing.View(all, q))
	for range 5 {
		if got := titles(listing.View(all, q)); !slices.Equal(got, first) {
			t.Fatalf("View() = %v, want %v", got, first)
		}
	}
}

func TestParseSort(t *testing.T) {
	tests := []struct {
		input string
		want  listing.Sort
	}{
		{"relevance", listing.Relevance},
		{" Likes ", listing.Likes},
		{"relevancia", listing.Relevance},
		{"fecha", listing.Date},
		{"visualizaciones", listing.Views},
		{"titulo", listing.Title},
		{"shuffle", listing.Sort("shuffle")},
		{"", listing.Sort("")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := listing.ParseSort(tt.input); got != tt.want {
				t.Errorf("ParseSort(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCategoryFallback(t *testing.T) {
	odd := story("Poema", 0, t1)
	odd.Category = "poetry"
	all := []stories.Story{odd, story("Tigre", 0, t1)}

	if odd.Category.Label() != stories.OtherLabel {
		t.Errorf("Label() = %q, want %q", odd.Category.Label(), stories.OtherLabel)
	}

	for _, c := range stories.Categories {
		for _, s := range listing.View(all, listing.Query{Category: c}) {
			if s.Title == "Poema" {
				t.Errorf("unknown category story appeared under %s", c)
			}
		}
	}

	if got := listing.View(all, listing.Query{}); len(got) != 2 {
		t.Errorf("all categories = %v, want both stories", titles(got))
	}
}

func TestCategoryStats(t *testing.T) {
	a := story("a", 0, t1)
	b := story("b", 0, t1)
	c := story("c", 0, t1)
	c.Category = stories.Legend
	d := story("d", 0, t1)
	d.Category = "poetry"

	stats := listing.CategoryStats([]stories.Story{a, b, c, d})

	if len(stats) != len(stories.Categories) {
		t.Fatalf("len = %d, want %d", len(stats), len(stories.Categories))
	}

	total := 0
	for _, s := range stats {
		total += s.Count
		if s.Label == "" || strings.EqualFold(s.Label, stories.OtherLabel) {
			t.Errorf("category %s has label %q", s.Category, s.Label)
		}
	}
	if stats[0].Category != stories.Traditional || stats[0].Count != 2 {
		t.Errorf("traditional = %+v, want 2", stats[0])
	}
	if stats[4].Category != stories.Legend || stats[4].Count != 1 {
		t.Errorf("legend = %+v, want 1", stats[4])
	}
	if total != 3 {
		t.Errorf("total = %d, want 3 (unknown category excluded)", total)
	}
}
