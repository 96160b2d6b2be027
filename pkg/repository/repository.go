// Package repository runs typed queries against PostgreSQL and translates
// driver failures into the caller's domain errors.
package repository

import (
	"context"
	"database/sql"
)

// Conn is implemented by *sql.DB, *sql.Tx, and *sql.Conn.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Scanner abstracts row scanning for use with a Store.
type Scanner interface {
	Scan(dest ...any) error
}

// ScanFunc converts a Scanner into a typed value.
type ScanFunc[T any] func(Scanner) (T, error)

// Store binds a connection, a row scanner, and the domain errors of one entity.
// Every error it returns has passed through MapError, so callers compare
// against NotFound, Duplicate, ErrConstraint, and ErrTransient directly.
type Store[T any] struct {
	Conn      Conn
	Scan      ScanFunc[T]
	NotFound  error
	Duplicate error
}

// NewStore creates a Store for entities of type T.
func NewStore[T any](conn Conn, scan ScanFunc[T], notFound, duplicate error) Store[T] {
	return Store[T]{Conn: conn, Scan: scan, NotFound: notFound, Duplicate: duplicate}
}

// One returns the single row selected by query.
// A missing row yields NotFound.
func (s Store[T]) One(ctx context.Context, query string, args ...any) (*T, error) {
	item, err := s.Scan(s.Conn.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, s.mapError(err)
	}
	return &item, nil
}

// Many returns every row selected by query, or an empty slice.
func (s Store[T]) Many(ctx context.Context, query string, args ...any) ([]T, error) {
	rows, err := s.Conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	items := make([]T, 0)
	for rows.Next() {
		item, err := s.Scan(rows)
		if err != nil {
			return nil, s.mapError(err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, s.mapError(err)
	}
	return items, nil
}

// ExecOne runs a statement that must affect exactly one row.
// Zero affected rows yields NotFound.
func (s Store[T]) ExecOne(ctx context.Context, query string, args ...any) error {
	result, err := s.Conn.ExecContext(ctx, query, args...)
	if err != nil {
		return s.mapError(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return s.mapError(err)
	}
	if n == 0 {
		return s.NotFound
	}
	return nil
}

func (s Store[T]) mapError(err error) error {
	return MapError(err, s.NotFound, s.Duplicate)
}
