package auth

import (
	"errors"
	"net/http"

	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/pkg/repository"
)

// Domain errors for authentication. Messages are shown to users as is.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotConfirmed       = errors.New("account email not confirmed")
	ErrDuplicate          = errors.New("an account with this email already exists")
	ErrUserNotFound       = errors.New("account not found")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenRevoked       = errors.New("token revoked")
	ErrInvalidRequest     = errors.New("invalid request body")
)

// MapHTTPStatus maps authentication errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve), errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenRevoked),
		errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNotConfirmed):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrTransient):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
