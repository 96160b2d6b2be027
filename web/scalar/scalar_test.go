package scalar_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/guarayo/cuentos/web/scalar"
)

func TestNewModule(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := scalar.NewModule("/docs", "Cuentos de Guarayo API", "/api/openapi.json", logger)

	t.Run("renders page", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Serve(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("content type = %q", ct)
		}
		body := rec.Body.String()
		if !strings.Contains(body, `data-url="/api/openapi.json"`) {
			t.Errorf("page does not reference the OpenAPI document: %s", body)
		}
		if !strings.Contains(body, "<title>Cuentos de Guarayo API</title>") {
			t.Errorf("page title missing: %s", body)
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Serve(rec, httptest.NewRequest(http.MethodGet, "/docs/missing.js", nil))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
