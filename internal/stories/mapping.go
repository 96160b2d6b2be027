package stories

import (
	"net/url"

	"github.com/guarayo/cuentos/pkg/query"
	"github.com/guarayo/cuentos/pkg/repository"
)

const columns = "id, title, body, author, category, created_at, image_url, audio_url, video_url, owner_id, like_count, view_count"

var projection = query.
	NewProjectionMap("public", "stories", "s").
	Project("id", "ID").
	Project("title", "Title").
	Project("body", "Body").
	Project("author", "Author").
	Project("category", "Category").
	Project("created_at", "CreatedAt").
	Project("image_url", "ImageURL").
	Project("audio_url", "AudioURL").
	Project("video_url", "VideoURL").
	Project("owner_id", "OwnerID").
	Project("like_count", "LikeCount").
	Project("view_count", "ViewCount")

var feedSort = []query.SortField{
	{Field: "CreatedAt", Descending: true},
	{Field: "ID", Descending: true},
}

var feedKey = []string{"CreatedAt", "ID"}

// Filters contains optional filtering criteria for the story feed.
// Nil fields are ignored. Category and OwnerID use exact matching,
// Author uses case-insensitive contains matching.
type Filters struct {
	Category *Category `json:"category,omitempty"`
	OwnerID  *string   `json:"owner_id,omitempty"`
	Author   *string   `json:"author,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	var category *string
	if f.Category != nil {
		c := string(*f.Category)
		category = &c
	}

	return b.
		WhereEquals("Category", category).
		WhereEquals("OwnerID", f.OwnerID).
		WhereContains("Author", f.Author)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("category"); c != "" {
		cat := Category(c)
		f.Category = &cat
	}

	if o := values.Get("owner_id"); o != "" {
		f.OwnerID = &o
	}

	if a := values.Get("author"); a != "" {
		f.Author = &a
	}

	return f
}

func scanStory(s repository.Scanner) (Story, error) {
	var st Story
	err := s.Scan(
		&st.ID,
		&st.Title,
		&st.Body,
		&st.Author,
		&st.Category,
		&st.CreatedAt,
		&st.ImageURL,
		&st.AudioURL,
		&st.VideoURL,
		&st.OwnerID,
		&st.LikeCount,
		&st.ViewCount,
	)
	return st, err
}

func scanCategoryCount(s repository.Scanner) (CategoryCount, error) {
	var c CategoryCount
	if err := s.Scan(&c.Category, &c.Count); err != nil {
		return c, err
	}
	c.Label = c.Category.Label()
	return c, nil
}
