// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/guarayo/cuentos/internal/config"
	"github.com/guarayo/cuentos/internal/infrastructure"
	"github.com/guarayo/cuentos/pkg/middleware"
	"github.com/guarayo/cuentos/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The auth system's startup hooks are registered with the lifecycle coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.Auth.Start(runtime.Lifecycle); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, cfg, runtime); err != nil {
		return nil, err
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Infrastructure.Logger))
	m.Use(domain.Auth.Middleware())

	return m, nil
}
