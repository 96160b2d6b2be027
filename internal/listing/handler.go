package listing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/guarayo/cuentos/internal/stories"
	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/openapi"
	"github.com/guarayo/cuentos/pkg/pagination"
	"github.com/guarayo/cuentos/pkg/routes"
)

// Source supplies the full story set and per-category counts.
type Source interface {
	All(ctx context.Context) ([]stories.Story, error)
	Stats(ctx context.Context) ([]stories.CategoryCount, error)
}

// SearchResult is one page of a view plus the facet counts of the whole set.
type SearchResult struct {
	pagination.PageResult[stories.Story]
	Stats []stories.CategoryCount `json:"stats"`
}

// Handler serves search and category facet endpoints.
type Handler struct {
	source     Source
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler reading stories from source.
func NewHandler(source Source, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		source:     source,
		logger:     logger.With("handler", "listing"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for listing endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/stories",
		Tags:   []string{"Listing"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/search", Handler: h.Search, OpenAPI: searchOp},
			{Method: "GET", Pattern: "/categories", Handler: h.Categories, OpenAPI: categoriesOp},
		},
	}
}

// Search filters and ranks every story, then returns the requested page.
// The sort defaults to relevance.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	q := Query{
		Text:     values.Get("q"),
		Category: stories.Category(values.Get("category")),
		Sort:     ParseSort(values.Get("sort")),
	}
	if q.Sort == "" {
		q.Sort = Relevance
	}

	all, err := h.source.All(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, stories.MapHTTPStatus(err), err)
		return
	}

	page := pagination.PageRequestFromQuery(values, h.pagination)

	handlers.RespondJSON(w, http.StatusOK, SearchResult{
		PageResult: pagination.Slice(View(all, q), page),
		Stats:      CategoryStats(all),
	})
}

// Categories returns the story count of each known category.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	stats, err := h.source.Stats(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, stories.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, stats)
}

var searchOp = &openapi.Operation{
	Summary:     "Search stories",
	Description: "Filters by text and category over the full set, ranks by the sort mode, then pages the result.",
	Parameters: []*openapi.Parameter{
		openapi.QueryParam("q", "string", "Case-insensitive substring of title, body, or author", false),
		openapi.QueryParam("category", "string", "Exact category", false),
		openapi.QueryParam("sort", "string", "relevance (default), date, likes, views, or title", false),
		openapi.QueryParam("page", "integer", "Page number (1-based)", false),
		openapi.QueryParam("page_size", "integer", "Results per page", false),
	},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Ranked page with category counts", "SearchResult"),
		503: openapi.ResponseRef("Unavailable"),
	},
}

var categoriesOp = &openapi.Operation{
	Summary: "Category counts",
	Responses: map[int]*openapi.Response{
		200: {
			Description: "Story count per known category",
			Content: map[string]*openapi.MediaType{
				"application/json": {Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("CategoryCount")}},
			},
		},
		503: openapi.ResponseRef("Unavailable"),
	},
}

// Schemas returns the OpenAPI component schemas for listing responses.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"SearchResult": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":        {Type: "array", Items: openapi.SchemaRef("Story")},
				"total":       {Type: "integer"},
				"page":        {Type: "integer"},
				"page_size":   {Type: "integer"},
				"total_pages": {Type: "integer"},
				"stats":       {Type: "array", Items: openapi.SchemaRef("CategoryCount")},
			},
		},
	}
}
