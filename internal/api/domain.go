package api

import (
	"github.com/guarayo/cuentos/internal/auth"
	"github.com/guarayo/cuentos/internal/config"
	"github.com/guarayo/cuentos/internal/listing"
	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/internal/publishing"
	"github.com/guarayo/cuentos/internal/stories"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Auth       auth.System
	Stories    stories.System
	Listing    *listing.Handler
	Media      media.System
	Publishing publishing.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	runtime.Database.Require("users", "stories")

	var revoker auth.Revoker
	if runtime.Cache != nil {
		revoker = auth.NewRedisRevoker(runtime.Cache.Client())
	}

	authSystem := auth.New(
		runtime.Database.Connection(),
		&cfg.Auth,
		revoker,
		runtime.Logger,
	)

	storiesSystem := stories.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	mediaSystem := media.New(runtime.Storage, cfg.Media, runtime.Logger)

	publishingSystem := publishing.New(
		storiesSystem,
		mediaSystem,
		cfg.Media.MaxTotalSize(),
		runtime.Logger,
	)

	return &Domain{
		Auth:       authSystem,
		Stories:    storiesSystem,
		Listing:    listing.NewHandler(storiesSystem, runtime.Logger, runtime.Pagination),
		Media:      mediaSystem,
		Publishing: publishingSystem,
	}
}
