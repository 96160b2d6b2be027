package api

import (
	"net/http"

	"github.com/guarayo/cuentos/internal/auth"
	"github.com/guarayo/cuentos/internal/config"
	"github.com/guarayo/cuentos/internal/listing"
	"github.com/guarayo/cuentos/internal/publishing"
	"github.com/guarayo/cuentos/internal/stories"
	"github.com/guarayo/cuentos/pkg/openapi"
	"github.com/guarayo/cuentos/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) error {
	groups := []routes.Group{
		domain.Auth.Handler().Routes(),
		domain.Stories.Handler().Routes(),
		domain.Listing.Routes(),
		domain.Publishing.Handler().Routes(),
		newMediaHandler(runtime.Storage, cfg.Media.CacheControl, runtime.Logger).routes(),
	}

	routes.Register(mux, groups...)

	doc, err := describe(cfg, groups)
	if err != nil {
		return err
	}
	mux.Handle("GET /openapi.json", doc)

	return nil
}

func describe(cfg *config.Config, groups []routes.Group) (*openapi.Document, error) {
	spec := openapi.NewSpec(cfg.API.OpenAPI.Title, cfg.Version)
	cfg.API.OpenAPI.Apply(spec)
	spec.AddServer(cfg.API.BasePath)

	spec.Components.AddSchemas(stories.Schemas())
	spec.Components.AddSchemas(listing.Schemas())
	spec.Components.AddSchemas(publishing.Schemas())
	spec.Components.AddSchemas(auth.Schemas())

	routes.Describe(spec, groups...)

	return openapi.NewDocument(spec)
}
