package config

import (
	"fmt"
	"os"

	"github.com/guarayo/cuentos/pkg/middleware"
	"github.com/guarayo/cuentos/pkg/openapi"
	"github.com/guarayo/cuentos/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CUENTOS_CORS_ENABLED",
	Origins:          "CUENTOS_CORS_ORIGINS",
	AllowedMethods:   "CUENTOS_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CUENTOS_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CUENTOS_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CUENTOS_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "CUENTOS_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CUENTOS_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:        "CUENTOS_OPENAPI_TITLE",
	Description:  "CUENTOS_OPENAPI_DESCRIPTION",
	ContactName:  "CUENTOS_OPENAPI_CONTACT_NAME",
	ContactEmail: "CUENTOS_OPENAPI_CONTACT_EMAIL",
	License:      "CUENTOS_OPENAPI_LICENSE",
}

const EnvAPIBasePath = "CUENTOS_API_BASE_PATH"

// APIConfig holds API routing, CORS, pagination, and API description settings.
type APIConfig struct {
	BasePath   string                `toml:"base_path"`
	CORS       middleware.CORSConfig `toml:"cors"`
	Pagination pagination.Config     `toml:"pagination"`
	OpenAPI    openapi.Config        `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
}
