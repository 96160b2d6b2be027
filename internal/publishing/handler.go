package publishing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/internal/stories"
	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/routes"
)

// formOverhead is the allowance for text fields and multipart framing on
// top of the attachment limits.
const formOverhead = 1 << 20

// Handler provides the write endpoints for stories.
type Handler struct {
	sys     System
	logger  *slog.Logger
	maxBody int64
}

// NewHandler creates a Handler. maxBody is the combined attachment limit.
func NewHandler(sys System, logger *slog.Logger, maxBody int64) *Handler {
	return &Handler{
		sys:     sys,
		logger:  logger.With("handler", "publishing"),
		maxBody: maxBody + formOverhead,
	}
}

// Routes returns the route group definition for story write endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/stories",
		Tags:   []string{"Publishing"},
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Create, OpenAPI: docs.Create},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Edit, OpenAPI: docs.Edit},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, OpenAPI: docs.Delete},
			{Method: "POST", Pattern: "/{id}/likes", Handler: h.Like, OpenAPI: docs.Like},
			{Method: "DELETE", Pattern: "/{id}/likes", Handler: h.Unlike, OpenAPI: docs.Unlike},
			{Method: "POST", Pattern: "/{id}/views", Handler: h.View, OpenAPI: docs.View},
		},
	}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, err := h.parseForm(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	attachments, err := readAttachments(form)
	if err != nil {
		h.respondError(w, err)
		return
	}

	d := Draft{
		Title:       form.Value.Get("title"),
		Body:        form.Value.Get("body"),
		Author:      form.Value.Get("author"),
		Category:    stories.Category(form.Value.Get("category")),
		Attachments: attachments,
	}

	story, err := h.sys.Create(r.Context(), session.FromContext(r.Context()), d)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, story)
}

func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := stories.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	form, err := h.parseForm(w, r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	attachments, err := readAttachments(form)
	if err != nil {
		h.respondError(w, err)
		return
	}

	ch := Changes{
		Title:       form.Value.Optional("title"),
		Body:        form.Value.Optional("body"),
		Author:      form.Value.Optional("author"),
		Attachments: attachments,
	}
	if c := form.Value.Optional("category"); c != nil {
		category := stories.Category(*c)
		ch.Category = &category
	}

	story, err := h.sys.Edit(r.Context(), session.FromContext(r.Context()), id, ch)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, story)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := stories.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.sys.Delete(r.Context(), session.FromContext(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Like(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.sys.Like)
}

func (h *Handler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, h.sys.Unlike)
}

func (h *Handler) View(w http.ResponseWriter, r *http.Request) {
	h.counter(w, r, func(ctx context.Context, _ session.Session, id uuid.UUID) (*stories.Story, error) {
		return h.sys.View(ctx, id)
	})
}

type counterFunc func(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error)

func (h *Handler) counter(w http.ResponseWriter, r *http.Request, fn counterFunc) {
	id, err := stories.ParseID(r.PathValue("id"))
	if err != nil {
		h.respondError(w, err)
		return
	}

	story, err := fn(r.Context(), session.FromContext(r.Context()), id)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, story)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// multipartForm wraps the parsed request form.
type multipartForm struct {
	Value values
	File  map[string][]*multipart.FileHeader
}

type values map[string][]string

func (v values) Get(key string) string {
	if vs := v[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Optional returns nil for fields absent from the form.
func (v values) Optional(key string) *string {
	vs, ok := v[key]
	if !ok || len(vs) == 0 {
		return nil
	}
	s := vs[0]
	return &s
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (*multipartForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", media.ErrFileTooLarge, tooLarge.Limit)
		}
		return nil, fmt.Errorf("%w: %v", ErrBadForm, err)
	}

	return &multipartForm{Value: values(r.MultipartForm.Value), File: r.MultipartForm.File}, nil
}

func readAttachments(f *multipartForm) (Attachments, error) {
	var a Attachments
	targets := map[media.Kind]**media.File{
		media.Image: &a.Image,
		media.Audio: &a.Audio,
		media.Video: &a.Video,
	}

	for kind, target := range targets {
		headers := f.File[string(kind)]
		if len(headers) == 0 {
			continue
		}
		file, err := readFile(headers[0])
		if err != nil {
			return Attachments{}, err
		}
		*target = file
	}
	return a, nil
}

func readFile(fh *multipart.FileHeader) (*media.File, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrBadForm, fh.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrBadForm, fh.Filename, err)
	}

	return &media.File{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
