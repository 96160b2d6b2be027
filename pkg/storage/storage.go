// Package storage provides object storage with Azure Blob Storage and S3-compatible (MinIO) providers.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"

	"github.com/guarayo/cuentos/pkg/lifecycle"
)

// System manages object storage operations and lifecycle coordination.
type System interface {
	// Start registers a startup hook that ensures the container or bucket exists.
	Start(lc *lifecycle.Coordinator) error
	// Upload streams data to the object at key.
	// With Overwrite disabled an existing object is left untouched and ErrExists is returned.
	Upload(ctx context.Context, key string, reader io.Reader, opts UploadOptions) error
	// Download returns the object at key. The caller must close Body.
	// Returns ErrNotFound if the object does not exist.
	Download(ctx context.Context, key string) (*Object, error)
	// Delete removes the object at key. Returns ErrNotFound if the object does not exist.
	Delete(ctx context.Context, key string) error
	// Exists reports whether an object exists at key.
	Exists(ctx context.Context, key string) (bool, error)
	// PublicURL returns the canonical public URL of key. It performs no I/O.
	PublicURL(key string) string
	// KeyFromURL reverses PublicURL. It reports false for URLs this store did not produce.
	KeyFromURL(raw string) (string, bool)
}

// UploadOptions controls object metadata and overwrite behavior.
type UploadOptions struct {
	ContentType  string
	CacheControl string
	Overwrite    bool
}

// Object is a downloaded object stream with its metadata.
type Object struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// New creates a storage system for the configured provider.
// Clients are constructed but no network call is made until Start runs.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	logger = logger.With("system", "storage", "provider", cfg.Provider)

	switch cfg.Provider {
	case ProviderAzure:
		return newAzure(cfg, logger)
	case ProviderMinio:
		return newMinio(cfg, logger)
	}

	return nil, fmt.Errorf("unsupported storage provider %q", cfg.Provider)
}

type locator struct {
	base string
}

func newLocator(base string) locator {
	return locator{base: strings.TrimRight(base, "/") + "/"}
}

func (l locator) url(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return l.base + strings.Join(segments, "/")
}

func (l locator) key(raw string) (string, bool) {
	rest, ok := strings.CutPrefix(raw, l.base)
	if !ok || rest == "" {
		return "", false
	}
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}

	key, err := url.PathUnescape(rest)
	if err != nil || validateKey(key) != nil {
		return "", false
	}
	return key, true
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}
