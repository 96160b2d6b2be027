// Package cache provides a Redis client with lifecycle coordination.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/guarayo/cuentos/pkg/lifecycle"
)

// ErrNotReady indicates the Redis server did not answer the startup ping.
var ErrNotReady = errors.New("cache not ready")

// System manages the Redis connection pool and lifecycle coordination.
type System interface {
	// Client returns the underlying Redis client.
	Client() *redis.Client
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type cache struct {
	client *redis.Client
	logger *slog.Logger
}

// New creates a cache system from the configuration. It returns nil when the
// cache is disabled. No connection is made until Start runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	opts, err := options(cfg)
	if err != nil {
		return nil, err
	}

	return &cache{
		client: redis.NewClient(opts),
		logger: logger.With("system", "cache"),
	}, nil
}

func options(cfg *Config) (*redis.Options, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opts.PoolSize = cfg.PoolSize
	opts.DialTimeout = cfg.DialTimeoutDuration()
	opts.MaxRetries = -1

	return opts, nil
}

func (c *cache) Client() *redis.Client {
	return c.client
}

func (c *cache) Start(lc *lifecycle.Coordinator) error {
	c.logger.Info("starting cache connection")

	lc.OnStartup("cache", func() error {
		ctx, cancel := context.WithTimeout(lc.Context(), c.client.Options().DialTimeout)
		defer cancel()

		if err := c.client.Ping(ctx).Err(); err != nil {
			c.logger.Error("cache ping failed", "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}

		c.logger.Info("cache connection established", "addr", c.client.Options().Addr)
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("closing cache connection")

		if err := c.client.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}

		c.logger.Info("cache connection closed")
	})

	return nil
}
