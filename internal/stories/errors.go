package stories

import (
	"errors"
	"maps"
	"net/http"
	"slices"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/guarayo/cuentos/pkg/pagination"
	"github.com/guarayo/cuentos/pkg/repository"
)

// Domain errors for story operations.
var (
	ErrNotFound  = errors.New("story not found")
	ErrDuplicate = errors.New("story already exists")
	ErrInvalid   = errors.New("invalid story")
	ErrInvalidID = errors.New("invalid story id")
)

// ValidationError reports every field of a command that failed validation.
// It matches ErrInvalid with errors.Is.
type ValidationError struct {
	Errs validation.Errors
}

func (e *ValidationError) Error() string {
	return ErrInvalid.Error() + ": " + strings.TrimSuffix(e.Errs.Error(), ".")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalid
}

// Fields returns the validation message for each rejected field.
func (e *ValidationError) Fields() map[string]string {
	fields := make(map[string]string, len(e.Errs))
	for name, err := range e.Errs {
		fields[name] = err.Error()
	}
	return fields
}

// Missing returns the sorted names of the rejected fields.
func (e *ValidationError) Missing() []string {
	return slices.Sorted(maps.Keys(e.Errs))
}

// MapHTTPStatus maps story domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalid) || errors.Is(err, ErrInvalidID) ||
		errors.Is(err, pagination.ErrInvalidCursor) || errors.Is(err, repository.ErrConstraint) {
		return http.StatusBadRequest
	}
	if errors.Is(err, repository.ErrTransient) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
