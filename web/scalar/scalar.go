// Package scalar serves the Scalar API reference UI for the generated OpenAPI description.
package scalar

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/guarayo/cuentos/pkg/module"
)

//go:embed index.html
var staticFS embed.FS

var page = template.Must(template.ParseFS(staticFS, "index.html"))

// NewModule creates a module that serves the reference UI at basePath,
// reading the description from specURL.
func NewModule(basePath, title, specURL string, logger *slog.Logger) *module.Module {
	return module.New(basePath, buildRouter(title, specURL, logger.With("module", "scalar")))
}

func buildRouter(title, specURL string, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := map[string]string{"Title": title, "SpecURL": specURL}
		if err := page.Execute(w, data); err != nil {
			logger.Error("render reference page failed", "error", err)
		}
	})

	return mux
}
