// Package stories implements the story record repository: persistence of
// stories and their like and view counters in PostgreSQL.
package stories

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Category classifies a story. Rows written before the category set was
// fixed may hold values outside Categories.
type Category string

const (
	Traditional Category = "traditional"
	Modern      Category = "modern"
	Children    Category = "children"
	Historical  Category = "historical"
	Legend      Category = "legend"
	Myth        Category = "myth"
)

// Categories lists the known categories in display order.
var Categories = []Category{Traditional, Modern, Children, Historical, Legend, Myth}

// OtherLabel is the display label for categories outside the known set.
const OtherLabel = "Otro"

var labels = map[Category]string{
	Traditional: "Tradicional",
	Modern:      "Moderno",
	Children:    "Infantil",
	Historical:  "Histórico",
	Legend:      "Leyenda",
	Myth:        "Mito",
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Label returns the display label for c, or OtherLabel when c is unknown.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return OtherLabel
}

// Story is a published narrative with optional media attachments.
type Story struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	ImageURL  *string   `json:"image_url"`
	AudioURL  *string   `json:"audio_url"`
	VideoURL  *string   `json:"video_url"`
	OwnerID   *string   `json:"owner_id"`
	LikeCount int       `json:"like_count"`
	ViewCount int       `json:"view_count"`
}

// MarshalJSON adds the category display label to the encoded story.
func (s Story) MarshalJSON() ([]byte, error) {
	type plain Story
	return json.Marshal(struct {
		plain
		CategoryLabel string `json:"category_label"`
	}{plain(s), s.Category.Label()})
}

// Owned reports whether the story records an owning identity.
func (s Story) Owned() bool {
	return s.OwnerID != nil && *s.OwnerID != ""
}

// CreateCommand carries the fields of a new story.
// ID and CreatedAt are assigned by the store when zero.
type CreateCommand struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	ImageURL  *string   `json:"image_url"`
	AudioURL  *string   `json:"audio_url"`
	VideoURL  *string   `json:"video_url"`
	OwnerID   *string   `json:"owner_id"`
}

// UpdateCommand carries a partial update. Nil fields keep their stored value.
type UpdateCommand struct {
	Title    *string   `json:"title,omitempty"`
	Body     *string   `json:"body,omitempty"`
	Author   *string   `json:"author,omitempty"`
	Category *Category `json:"category,omitempty"`
	ImageURL *string   `json:"image_url,omitempty"`
	AudioURL *string   `json:"audio_url,omitempty"`
	VideoURL *string   `json:"video_url,omitempty"`
}

// Empty reports whether the command changes nothing.
func (c UpdateCommand) Empty() bool {
	return c.Title == nil && c.Body == nil && c.Author == nil && c.Category == nil &&
		c.ImageURL == nil && c.AudioURL == nil && c.VideoURL == nil
}

// CategoryCount is the number of stories in one category.
type CategoryCount struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}
