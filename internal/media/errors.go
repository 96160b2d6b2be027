package media

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnknownKind     = errors.New("unknown media kind")
	ErrFileTooLarge    = errors.New("file exceeds maximum size")
	ErrUnsupportedType = errors.New("unsupported file type")
)

// UploadError reports a failed upload of one attachment.
type UploadError struct {
	Kind Kind
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Kind, e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// MapHTTPStatus maps media errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var ue *UploadError
	if errors.As(err, &ue) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrUnsupportedType) || errors.Is(err, ErrUnknownKind) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
