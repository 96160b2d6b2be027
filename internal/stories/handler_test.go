package stories_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/stories"
	"github.com/guarayo/cuentos/pkg/pagination"
)

type mockSystem struct {
	pageFn func(ctx context.Context, req pagination.CursorRequest, filters stories.Filters) (*pagination.CursorResult[stories.Story], error)
	findFn func(ctx context.Context, id uuid.UUID) (*stories.Story, error)
}

func (m *mockSystem) Handler() *stories.Handler { return newTestHandler(m) }

func (m *mockSystem) All(context.Context) ([]stories.Story, error) { return nil, nil }

func (m *mockSystem) Page(ctx context.Context, req pagination.CursorRequest, filters stories.Filters) (*pagination.CursorResult[stories.Story], error) {
	return m.pageFn(ctx, req, filters)
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return m.findFn(ctx, id)
}

func (m *mockSystem) Create(context.Context, stories.CreateCommand) (*stories.Story, error) {
	return nil, nil
}

func (m *mockSystem) Update(context.Context, uuid.UUID, stories.UpdateCommand) (*stories.Story, error) {
	return nil, nil
}

func (m *mockSystem) Delete(context.Context, uuid.UUID) error { return nil }

func (m *mockSystem) IncrementLikes(context.Context, uuid.UUID) (*stories.Story, error) {
	return nil, nil
}

func (m *mockSystem) DecrementLikes(context.Context, uuid.UUID) (*stories.Story, error) {
	return nil, nil
}

func (m *mockSystem) IncrementViews(context.Context, uuid.UUID) (*stories.Story, error) {
	return nil, nil
}

func (m *mockSystem) Stats(context.Context) ([]stories.CategoryCount, error) { return nil, nil }

func newTestHandler(sys stories.System) *stories.Handler {
	return stories.NewHandler(
		sys,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		pagination.Config{DefaultPageSize: 12, MaxPageSize: 100},
	)
}

func setupMux(h *stories.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

func sampleStory() stories.Story {
	return stories.Story{
		ID:        uuid.MustParse("550e8400-e29b-41d4-a716-446655440000"),
		Title:     "El Tigre",
		Body:      "Había una vez un tigre.",
		Author:    "Ana",
		Category:  stories.Legend,
		CreatedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		LikeCount: 3,
	}
}

func TestHandlerFeed(t *testing.T) {
	s := sampleStory()

	t.Run("returns page with filters", func(t *testing.T) {
		var captured stories.Filters
		var capturedReq pagination.CursorRequest

		sys := &mockSystem{
			pageFn: func(_ context.Context, req pagination.CursorRequest, f stories.Filters) (*pagination.CursorResult[stories.Story], error) {
				captured, capturedReq = f, req
				result := pagination.NewCursorResult([]stories.Story{s}, req.Limit, func(st stories.Story) pagination.Cursor {
					return pagination.Cursor{CreatedAt: st.CreatedAt, ID: st.ID.String()}
				})
				return &result, nil
			},
		}

		rec := httptest.NewRecorder()
		setupMux(newTestHandler(sys)).ServeHTTP(rec, httptest.NewRequest("GET", "/stories?category=legend&limit=5", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if captured.Category == nil || *captured.Category != stories.Legend {
			t.Errorf("category filter = %v, want legend", captured.Category)
		}
		if capturedReq.Limit != 5 || capturedReq.After != nil {
			t.Errorf("request = %+v, want limit 5 from the start", capturedReq)
		}

		var result pagination.CursorResult[stories.Story]
		if err := json.NewDecoder(rec.Body).Decode(&result); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(result.Data) != 1 || result.Data[0].ID != s.ID || result.HasMore {
			t.Errorf("result = %+v", result)
		}
	})

	t.Run("passes decoded cursor", func(t *testing.T) {
		cursor := pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID.String()}
		var capturedReq pagination.CursorRequest

		sys := &mockSystem{
			pageFn: func(_ context.Context, req pagination.CursorRequest, _ stories.Filters) (*pagination.CursorResult[stories.Story], error) {
				capturedReq = req
				return &pagination.CursorResult[stories.Story]{Data: []stories.Story{}}, nil
			},
		}

		rec := httptest.NewRecorder()
		setupMux(newTestHandler(sys)).ServeHTTP(rec, httptest.NewRequest("GET", "/stories?cursor="+cursor.Encode(), nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if capturedReq.After == nil || capturedReq.After.ID != cursor.ID || !capturedReq.After.CreatedAt.Equal(cursor.CreatedAt) {
			t.Errorf("After = %+v, want %+v", capturedReq.After, cursor)
		}
		if capturedReq.Limit != 12 {
			t.Errorf("Limit = %d, want default 12", capturedReq.Limit)
		}
	})

	t.Run("rejects malformed cursor", func(t *testing.T) {
		rec := httptest.NewRecorder()
		setupMux(newTestHandler(&mockSystem{})).ServeHTTP(rec, httptest.NewRequest("GET", "/stories?cursor=bad!token", nil))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestHandlerFind(t *testing.T) {
	s := sampleStory()
	sys := &mockSystem{
		findFn: func(_ context.Context, id uuid.UUID) (*stories.Story, error) {
			if id == s.ID {
				return &s, nil
			}
			return nil, stories.ErrNotFound
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/stories/" + s.ID.String(), http.StatusOK},
		{"not found", "/stories/" + uuid.NewString(), http.StatusNotFound},
		{"invalid id", "/stories/nope", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}

	t.Run("body carries category label", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest("GET", "/stories/"+s.ID.String(), nil))

		var body map[string]any
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body["category_label"] != "Leyenda" {
			t.Errorf("category_label = %v, want Leyenda", body["category_label"])
		}
	})
}
