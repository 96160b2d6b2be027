// Package database provides PostgreSQL connection management with lifecycle coordination.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/guarayo/cuentos/pkg/lifecycle"
)

var (
	// ErrNotReady indicates the database did not answer within the connect timeout.
	ErrNotReady = errors.New("database not ready")
	// ErrSchemaMissing indicates required tables are absent; run the migrations.
	ErrSchemaMissing = errors.New("database schema missing")
)

const pingInterval = 500 * time.Millisecond

// System manages database connections and lifecycle coordination.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Require names tables that must exist before startup completes.
	Require(tables ...string)
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	required    []string
}

// New creates a database system with the given configuration.
// The pool is configured immediately; connections are made on Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	return &database{
		conn:        db,
		logger:      logger.With("system", "database", "database", cfg.Name),
		connTimeout: cfg.ConnTimeoutDuration(),
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Require(tables ...string) {
	d.required = append(d.required, tables...)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	lc.OnStartup("database", func() error {
		ctx, cancel := context.WithTimeout(lc.Context(), d.connTimeout)
		defer cancel()

		if err := d.ping(ctx); err != nil {
			d.logger.Error("database unreachable", "timeout", d.connTimeout, "error", err)
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}

		missing, err := d.missingTables(ctx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotReady, err)
		}
		if len(missing) > 0 {
			d.logger.Error("schema incomplete", "missing", missing)
			return fmt.Errorf("%w: %s", ErrSchemaMissing, strings.Join(missing, ", "))
		}

		d.logger.Info("database ready", "tables", len(d.required))
		return nil
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()

		stats := d.conn.Stats()
		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}
		d.logger.Info("database closed", "open", stats.OpenConnections, "waits", stats.WaitCount)
	})

	return nil
}

// ping retries until the server answers or ctx ends, so the service can
// start alongside a database container that is still booting.
func (d *database) ping(ctx context.Context) error {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		err := d.conn.PingContext(ctx)
		if err == nil {
			return nil
		}
		d.logger.Debug("database ping failed", "error", err)

		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}

func (d *database) missingTables(ctx context.Context) ([]string, error) {
	var missing []string
	for _, table := range d.required {
		var exists bool
		if err := d.conn.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", table).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check table %s: %w", table, err)
		}
		if !exists {
			missing = append(missing, table)
		}
	}
	return missing, nil
}
