package stories

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/pagination"
	"github.com/guarayo/cuentos/pkg/routes"
)

// Handler provides the read endpoints for stories.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "stories"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for story read endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/stories",
		Tags:   []string{"Stories"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Feed, OpenAPI: docs.Feed},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find, OpenAPI: docs.Find},
		},
	}
}

// Feed returns one keyset page of stories, newest first.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	req, err := pagination.CursorRequestFromQuery(r.URL.Query(), h.pagination)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Page(r.Context(), req, FiltersFromQuery(r.URL.Query()))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single story by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := ParseID(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	s, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, s)
}

// ParseID parses a story id path value.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}
