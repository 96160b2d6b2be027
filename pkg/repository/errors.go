package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgDuplicateKeyCode     = "23505"
	pgCheckViolationCode   = "23514"
	pgNotNullViolationCode = "23502"
)

var (
	// ErrTransient marks failures of the store itself (connection loss, timeouts)
	// that the caller may retry manually.
	ErrTransient = errors.New("store temporarily unavailable")
	// ErrConstraint marks rows rejected by a CHECK or NOT NULL constraint.
	ErrConstraint = errors.New("constraint violation")
)

// MapError translates database errors to domain errors.
// It maps sql.ErrNoRows to notFoundErr, PostgreSQL unique violations (23505)
// to duplicateErr, CHECK and NOT NULL violations to ErrConstraint, and
// connectivity failures to ErrTransient. Other errors are returned unchanged.
func MapError(err error, notFoundErr, duplicateErr error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgDuplicateKeyCode:
			return duplicateErr
		case pgCheckViolationCode, pgNotNullViolationCode:
			return fmt.Errorf("%w: %s", ErrConstraint, pgErr.ConstraintName)
		}
		return err
	}

	if IsTransient(err) {
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}

	return err
}

// IsTransient reports whether err is a connectivity or timeout failure.
func IsTransient(err error) bool {
	if errors.Is(err, ErrTransient) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return pgconn.Timeout(err)
}
