// Package listing filters and ranks an in-memory set of stories.
//
// View is a pure function: the same stories and query always produce the
// same order, and the caller's slice is never reordered. Paging is left to
// the caller so the engine stays page-agnostic.
package listing

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/guarayo/cuentos/internal/stories"
)

// Sort selects the ordering applied by View.
type Sort string

const (
	Relevance Sort = "relevance"
	Date      Sort = "date"
	Likes     Sort = "likes"
	Views     Sort = "views"
	Title     Sort = "title"
)

var aliases = map[string]Sort{
	"relevancia":      Relevance,
	"fecha":           Date,
	"visualizaciones": Views,
	"titulo":          Title,
}

// ParseSort normalizes a sort name. Spanish names used by the web client are
// accepted as aliases; anything else is returned unchanged and sorts as a
// pass-through.
func ParseSort(s string) Sort {
	s = strings.ToLower(strings.TrimSpace(s))
	if alias, ok := aliases[s]; ok {
		return alias
	}
	return Sort(s)
}

// Query holds the free-text search, category filter, and sort mode.
// Empty Text and Category match every story.
type Query struct {
	Text     string
	Category stories.Category
	Sort     Sort
}

// View returns the stories matching q in the order q.Sort selects.
// Equal keys keep their input order.
func View(all []stories.Story, q Query) []stories.Story {
	needle := strings.ToLower(q.Text)

	result := make([]stories.Story, 0, len(all))
	for _, s := range all {
		if matches(s, needle, q.Category) {
			result = append(result, s)
		}
	}

	if cmpFn := comparator(q.Sort, needle); cmpFn != nil {
		slices.SortStableFunc(result, cmpFn)
	}
	return result
}

func matches(s stories.Story, needle string, category stories.Category) bool {
	if category != "" && s.Category != category {
		return false
	}
	if needle == "" {
		return true
	}
	return contains(s.Title, needle) || contains(s.Body, needle) || contains(s.Author, needle)
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func comparator(sort Sort, needle string) func(a, b stories.Story) int {
	switch sort {
	case Relevance:
		return func(a, b stories.Story) int {
			am, bm := contains(a.Title, needle), contains(b.Title, needle)
			if am != bm {
				if am {
					return -1
				}
				return 1
			}
			return cmp.Compare(b.LikeCount, a.LikeCount)
		}
	case Date:
		return func(a, b stories.Story) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	case Likes:
		return func(a, b stories.Story) int {
			return cmp.Compare(b.LikeCount, a.LikeCount)
		}
	case Views:
		return func(a, b stories.Story) int {
			return cmp.Compare(b.ViewCount, a.ViewCount)
		}
	case Title:
		// Collators keep internal buffers and are not safe to share.
		c := collate.New(language.Spanish)
		return func(a, b stories.Story) int {
			return c.CompareString(a.Title, b.Title)
		}
	}
	return nil
}

// CategoryStats counts stories in each known category over the whole set.
// Stories with unknown categories are not counted under any category.
func CategoryStats(all []stories.Story) []stories.CategoryCount {
	counts := make(map[stories.Category]int, len(stories.Categories))
	for _, s := range all {
		counts[s.Category]++
	}

	result := make([]stories.CategoryCount, len(stories.Categories))
	for i, c := range stories.Categories {
		result[i] = stories.CategoryCount{Category: c, Label: c.Label(), Count: counts[c]}
	}
	return result
}
