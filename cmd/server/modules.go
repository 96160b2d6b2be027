package main

import (
	"net/http"

	"github.com/guarayo/cuentos/internal/api"
	"github.com/guarayo/cuentos/internal/config"
	"github.com/guarayo/cuentos/internal/infrastructure"
	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/middleware"
	"github.com/guarayo/cuentos/pkg/module"
	"github.com/guarayo/cuentos/web/scalar"
)

type Modules struct {
	API  *module.Module
	Docs *module.Module
}

func NewModules(infra *infrastructure.Infrastructure, cfg *config.Config) (*Modules, error) {
	apiModule, err := api.NewModule(cfg, infra)
	if err != nil {
		return nil, err
	}

	docsModule := scalar.NewModule(
		"/docs",
		cfg.API.OpenAPI.Title,
		cfg.API.BasePath+"/openapi.json",
		infra.Logger,
	)
	docsModule.Use(middleware.Logger(infra.Logger))

	return &Modules{
		API:  apiModule,
		Docs: docsModule,
	}, nil
}

func (m *Modules) Mount(router *module.Router) {
	router.Mount(m.API)
	router.Mount(m.Docs)
}

func buildRouter(infra *infrastructure.Infrastructure) *module.Router {
	router := module.NewRouter()
	router.Use(middleware.Recover(infra.Logger))

	router.HandleNative("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandleNative("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			body := map[string]string{"status": "not ready"}
			if err := infra.Lifecycle.Err(); err != nil {
				body["error"] = err.Error()
			}
			handlers.RespondJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		handlers.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})

	return router
}
