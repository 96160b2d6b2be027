package stories

import "github.com/guarayo/cuentos/pkg/openapi"

var docs = struct {
	Feed *openapi.Operation
	Find *openapi.Operation
}{
	Feed: &openapi.Operation{
		Summary:     "List stories",
		Description: "Keyset-paginated story feed ordered by creation time, newest first.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("cursor", "string", "Token from a previous page's next_cursor", false),
			openapi.QueryParam("limit", "integer", "Page size", false),
			openapi.QueryParam("category", "string", "Exact category", false),
			openapi.QueryParam("owner_id", "string", "Exact owner identity", false),
			openapi.QueryParam("author", "string", "Author contains (case-insensitive)", false),
		},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Story page", "StoryPage"),
			400: openapi.ResponseRef("BadRequest"),
			503: openapi.ResponseRef("Unavailable"),
		},
	},
	Find: &openapi.Operation{
		Summary:    "Find story by ID",
		Parameters: []*openapi.Parameter{openapi.PathParam("id", "Story UUID")},
		Responses: map[int]*openapi.Response{
			200: openapi.ResponseJSON("Story", "Story"),
			400: openapi.ResponseRef("BadRequest"),
			404: openapi.ResponseRef("NotFound"),
		},
	},
}

// Schemas returns the OpenAPI component schemas for stories.
func Schemas() map[string]*openapi.Schema {
	categories := make([]any, len(Categories))
	for i, c := range Categories {
		categories[i] = string(c)
	}

	nullableURL := func(desc string) *openapi.Schema {
		return &openapi.Schema{Type: "string", Format: "uri", Description: desc}
	}

	return map[string]*openapi.Schema{
		"Category": {Type: "string", Enum: categories},
		"Story": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"title":          {Type: "string"},
				"body":           {Type: "string"},
				"author":         {Type: "string"},
				"category":       openapi.SchemaRef("Category"),
				"category_label": {Type: "string", Description: "Display label; Otro for unknown categories"},
				"created_at":     {Type: "string", Format: "date-time"},
				"image_url":      nullableURL("Public image URL"),
				"audio_url":      nullableURL("Public audio URL"),
				"video_url":      nullableURL("Public video URL"),
				"owner_id":       {Type: "string", Description: "Identity that created the story"},
				"like_count":     {Type: "integer"},
				"view_count":     {Type: "integer"},
			},
			Required: []string{"id", "title", "body", "author", "category", "created_at", "like_count", "view_count"},
		},
		"StoryPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Story")},
				"next_cursor": {Type: "string"},
				"has_more":    {Type: "boolean"},
			},
		},
		"CategoryCount": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"category": openapi.SchemaRef("Category"),
				"label":    {Type: "string"},
				"count":    {Type: "integer"},
			},
		},
	}
}
