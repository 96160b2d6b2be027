package publishing

import (
	"errors"
	"net/http"

	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/internal/stories"
)

var (
	ErrForbidden  = errors.New("only the owner may change this story")
	ErrInProgress = errors.New("a previous request for this story is still in progress")
	ErrBadForm    = errors.New("invalid multipart form")
)

// MapHTTPStatus maps lifecycle errors, including the media and story errors
// they wrap, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrBadForm):
		return http.StatusBadRequest
	}

	if status := media.MapHTTPStatus(err); status != http.StatusInternalServerError {
		return status
	}
	return stories.MapHTTPStatus(err)
}
