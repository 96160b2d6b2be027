// Package media stores story attachments in the object store and resolves
// their public URLs.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/guarayo/cuentos/pkg/storage"
)

// Kind is the media type of an attachment.
type Kind string

const (
	Image Kind = "image"
	Audio Kind = "audio"
	Video Kind = "video"
)

// Kinds lists every media kind.
var Kinds = []Kind{Image, Audio, Video}

var directories = map[Kind]string{
	Image: "images",
	Audio: "audios",
	Video: "videos",
}

// ParseKind returns the Kind named by s.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := directories[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Directory returns the object store directory for k.
func (k Kind) Directory() string {
	return directories[k]
}

// File is an attachment received from a client.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Size returns the length of the file in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// DetectContentType returns the declared content type, or the sniffed one
// when the declaration is missing or generic.
func (f File) DetectContentType() string {
	declared := strings.TrimSpace(f.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return mimetype.Detect(f.Data).String()
}

// Asset is an uploaded attachment.
type Asset struct {
	Kind Kind   `json:"kind"`
	Key  string `json:"key"`
	URL  string `json:"url"`
}

// System checks, uploads, and removes attachments.
type System interface {
	// Check applies the size and type policy for kind. It performs no I/O.
	Check(f File, kind Kind) error
	// Upload stores f under a new collision-resistant key and returns its public URL.
	// Failures are returned as *UploadError; nothing is retried.
	Upload(ctx context.Context, f File, kind Kind) (*Asset, error)
	// Remove deletes an object this store produced, addressed by its public URL.
	// URLs from other origins and objects already gone are ignored.
	Remove(ctx context.Context, url string) error
}

type uploader struct {
	store  storage.System
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a media system backed by store.
func New(store storage.System, cfg Config, logger *slog.Logger) System {
	return &uploader{
		store:  store,
		cfg:    cfg,
		logger: logger.With("system", "media"),
		now:    time.Now,
	}
}

func (u *uploader) Check(f File, kind Kind) error {
	return u.cfg.Check(f, kind)
}

func (u *uploader) Upload(ctx context.Context, f File, kind Kind) (*Asset, error) {
	dir := kind.Directory()
	if dir == "" {
		return nil, &UploadError{Kind: kind, Err: ErrUnknownKind}
	}

	key := dir + "/" + objectName(u.now(), f.Filename)

	opts := storage.UploadOptions{
		ContentType:  f.DetectContentType(),
		CacheControl: u.cfg.CacheControl,
	}

	if err := u.store.Upload(ctx, key, bytes.NewReader(f.Data), opts); err != nil {
		return nil, &UploadError{Kind: kind, Err: err}
	}

	u.logger.Info("media uploaded", "kind", kind, "key", key, "size", f.Size())

	return &Asset{Kind: kind, Key: key, URL: u.store.PublicURL(key)}, nil
}

func (u *uploader) Remove(ctx context.Context, url string) error {
	key, ok := u.store.KeyFromURL(url)
	if !ok {
		u.logger.Debug("skipping foreign media url", "url", url)
		return nil
	}

	if err := u.store.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("remove %s: %w", key, err)
	}

	u.logger.Info("media removed", "key", key)
	return nil
}

func objectName(now time.Time, filename string) string {
	token := strconv.FormatUint(rand.Uint64(), 36)
	return strconv.FormatInt(now.UnixMilli(), 10) + "-" + token + "." + extension(filename)
}

// extension returns the lower-cased suffix after the last dot, keeping only
// ASCII letters and digits, or "bin" when nothing usable remains.
func extension(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return "bin"
	}

	ext := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		}
		return -1
	}, filename[i+1:])

	if ext == "" {
		return "bin"
	}
	return ext
}
