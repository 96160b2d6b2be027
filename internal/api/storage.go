package api

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/openapi"
	"github.com/guarayo/cuentos/pkg/routes"
	"github.com/guarayo/cuentos/pkg/storage"
)

// mediaHandler streams attachments from a private object store.
// Point storage.public_base_url at {base_path}/media to serve them through it.
type mediaHandler struct {
	store        storage.System
	cacheControl string
	logger       *slog.Logger
}

func newMediaHandler(store storage.System, cacheControl string, logger *slog.Logger) *mediaHandler {
	return &mediaHandler{
		store:        store,
		cacheControl: cacheControl,
		logger:       logger.With("handler", "media"),
	}
}

var downloadOp = &openapi.Operation{
	Summary:     "Download an attachment",
	Description: "Streams an image, audio, or video attachment from the object store.",
	Parameters:  []*openapi.Parameter{openapi.PathParam("key", "Object key, e.g. images/1714567890-abc.jpg")},
	Responses: map[int]*openapi.Response{
		200: {Description: "Attachment content"},
		404: openapi.ResponseRef("NotFound"),
	},
}

func (h *mediaHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/media",
		Tags:   []string{"Media"},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download, OpenAPI: downloadOp},
		},
	}
}

func (h *mediaHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if !isMediaKey(key) {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)
	if result.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(result.ContentLength, 10))
	}
	if h.cacheControl != "" {
		w.Header().Set("Cache-Control", h.cacheControl)
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, result.Body); err != nil {
		h.logger.Warn("media stream interrupted", "key", key, "error", err)
	}
}

func isMediaKey(key string) bool {
	dir, name, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return false
	}
	for _, k := range media.Kinds {
		if k.Directory() == dir {
			return true
		}
	}
	return false
}
