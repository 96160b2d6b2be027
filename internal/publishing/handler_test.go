package publishing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/publishing"
	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/internal/stories"
)

type mockSystem struct {
	createFn func(ctx context.Context, s session.Session, d publishing.Draft) (*stories.Story, error)
	editFn   func(ctx context.Context, s session.Session, id uuid.UUID, c publishing.Changes) (*stories.Story, error)
	deleteFn func(ctx context.Context, s session.Session, id uuid.UUID) error
	likeFn   func(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error)
	viewFn   func(ctx context.Context, id uuid.UUID) (*stories.Story, error)
}

func (m *mockSystem) Handler() *publishing.Handler { return nil }

func (m *mockSystem) Create(ctx context.Context, s session.Session, d publishing.Draft) (*stories.Story, error) {
	return m.createFn(ctx, s, d)
}

func (m *mockSystem) Edit(ctx context.Context, s session.Session, id uuid.UUID, c publishing.Changes) (*stories.Story, error) {
	return m.editFn(ctx, s, id, c)
}

func (m *mockSystem) Delete(ctx context.Context, s session.Session, id uuid.UUID) error {
	return m.deleteFn(ctx, s, id)
}

func (m *mockSystem) Like(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error) {
	return m.likeFn(ctx, s, id)
}

func (m *mockSystem) Unlike(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error) {
	return m.likeFn(ctx, s, id)
}

func (m *mockSystem) View(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return m.viewFn(ctx, id)
}

func setupMux(sys publishing.System, maxBody int64) *http.ServeMux {
	h := publishing.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), maxBody)
	group := h.Routes()

	mux := http.NewServeMux()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...part) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.filename+`"`)
		h.Set("Content-Type", f.contentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		pw.Write(f.data)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func withSession(r *http.Request, s session.Session) *http.Request {
	return r.WithContext(session.WithContext(r.Context(), s))
}

func TestHandlerCreate(t *testing.T) {
	var got publishing.Draft
	var gotSession session.Session
	sys := &mockSystem{
		createFn: func(_ context.Context, s session.Session, d publishing.Draft) (*stories.Story, error) {
			got, gotSession = d, s
			return &stories.Story{ID: uuid.New(), Title: d.Title, Category: d.Category}, nil
		},
	}

	body, ct := multipartBody(t,
		map[string]string{"title": "El Guajojó", "body": "Había una vez", "author": "Ana", "category": "myth"},
		part{"image", "guajojo.png", "image/png", []byte("png")},
	)
	req := httptest.NewRequest(http.MethodPost, "/stories", body)
	req.Header.Set("Content-Type", ct)
	req = withSession(req, signedIn("u-1"))

	rec := httptest.NewRecorder()
	setupMux(sys, 1<<20).ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	if got.Title != "El Guajojó" || got.Category != stories.Myth {
		t.Errorf("draft = %+v", got)
	}
	if got.Image == nil || got.Image.Filename != "guajojo.png" || string(got.Image.Data) != "png" {
		t.Errorf("image = %+v", got.Image)
	}
	if got.Audio != nil || got.Video != nil {
		t.Error("unexpected audio or video attachment")
	}
	if gotSession.IdentityID() != "u-1" {
		t.Errorf("session = %+v", gotSession)
	}
}

func TestHandlerEditPartialFields(t *testing.T) {
	id := uuid.New()
	var got publishing.Changes
	sys := &mockSystem{
		editFn: func(_ context.Context, _ session.Session, gotID uuid.UUID, c publishing.Changes) (*stories.Story, error) {
			if gotID != id {
				t.Errorf("id = %s, want %s", gotID, id)
			}
			got = c
			return &stories.Story{ID: id}, nil
		},
	}

	body, ct := multipartBody(t, map[string]string{"body": "Nuevo cuerpo", "category": "legend"})
	req := httptest.NewRequest(http.MethodPut, "/stories/"+id.String(), body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	setupMux(sys, 1<<20).ServeHTTP(rec, withSession(req, signedIn("u-1")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if got.Title != nil || got.Author != nil {
		t.Errorf("absent fields set: title=%v author=%v", got.Title, got.Author)
	}
	if got.Body == nil || *got.Body != "Nuevo cuerpo" {
		t.Errorf("body = %v", got.Body)
	}
	if got.Category == nil || *got.Category != stories.Legend {
		t.Errorf("category = %v", got.Category)
	}
}

func TestHandlerErrors(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, session.Session, publishing.Draft) (*stories.Story, error) {
			return nil, session.ErrUnauthenticated
		},
		deleteFn: func(context.Context, session.Session, uuid.UUID) error {
			return publishing.ErrForbidden
		},
		likeFn: func(context.Context, session.Session, uuid.UUID) (*stories.Story, error) {
			return nil, stories.ErrNotFound
		},
	}

	form, ct := multipartBody(t, map[string]string{"title": "x"})

	tests := []struct {
		name        string
		method      string
		path        string
		body        io.Reader
		contentType string
		want        int
	}{
		{"anonymous create", http.MethodPost, "/stories", form, ct, http.StatusUnauthorized},
		{"not multipart", http.MethodPost, "/stories", strings.NewReader(`{"title":"x"}`), "application/json", http.StatusBadRequest},
		{"forbidden delete", http.MethodDelete, "/stories/" + uuid.NewString(), nil, "", http.StatusForbidden},
		{"bad id", http.MethodDelete, "/stories/not-a-uuid", nil, "", http.StatusBadRequest},
		{"like missing story", http.MethodPost, "/stories/" + uuid.NewString() + "/likes", nil, "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, tt.body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			setupMux(sys, 1<<20).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestHandlerBodyLimit(t *testing.T) {
	sys := &mockSystem{
		createFn: func(context.Context, session.Session, publishing.Draft) (*stories.Story, error) {
			t.Fatal("Create called for oversized request")
			return nil, nil
		},
	}

	big := bytes.Repeat([]byte("v"), 2<<20)
	body, ct := multipartBody(t, map[string]string{"title": "x"}, part{"video", "v.mp4", "video/mp4", big})
	req := httptest.NewRequest(http.MethodPost, "/stories", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	setupMux(sys, 0).ServeHTTP(rec, withSession(req, signedIn("u-1")))

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestHandlerView(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		viewFn: func(_ context.Context, got uuid.UUID) (*stories.Story, error) {
			return &stories.Story{ID: got, ViewCount: 7}, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(sys, 0).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stories/"+id.String()+"/views", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var s stories.Story
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.ID != id || s.ViewCount != 7 {
		t.Errorf("story = %+v", s)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{session.ErrUnauthenticated, http.StatusUnauthorized},
		{publishing.ErrForbidden, http.StatusForbidden},
		{publishing.ErrInProgress, http.StatusConflict},
		{publishing.ErrBadForm, http.StatusBadRequest},
		{stories.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := publishing.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
