package media

import (
	"fmt"
	"os"
	"strings"

	"github.com/guarayo/cuentos/pkg/formatting"
)

// Config holds the attachment acceptance policy and upload metadata.
type Config struct {
	MaxImageSize formatting.ByteSize `toml:"max_image_size"`
	MaxAudioSize formatting.ByteSize `toml:"max_audio_size"`
	MaxVideoSize formatting.ByteSize `toml:"max_video_size"`
	CacheControl string              `toml:"cache_control"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	MaxImageSize string
	MaxAudioSize string
	MaxVideoSize string
	CacheControl string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.MaxImageSize != 0 {
		c.MaxImageSize = overlay.MaxImageSize
	}
	if overlay.MaxAudioSize != 0 {
		c.MaxAudioSize = overlay.MaxAudioSize
	}
	if overlay.MaxVideoSize != 0 {
		c.MaxVideoSize = overlay.MaxVideoSize
	}
	if overlay.CacheControl != "" {
		c.CacheControl = overlay.CacheControl
	}
}

// MaxSize returns the size limit for kind.
func (c *Config) MaxSize(kind Kind) formatting.ByteSize {
	switch kind {
	case Image:
		return c.MaxImageSize
	case Audio:
		return c.MaxAudioSize
	case Video:
		return c.MaxVideoSize
	}
	return 0
}

// MaxTotalSize returns the sum of all per-kind limits, the largest request
// body a story with every attachment can need.
func (c *Config) MaxTotalSize() int64 {
	return int64(c.MaxImageSize + c.MaxAudioSize + c.MaxVideoSize)
}

// Check rejects files larger than the limit for kind and files whose
// content type is not of the kind's family (image/*, audio/*, video/*).
func (c *Config) Check(f File, kind Kind) error {
	if kind.Directory() == "" {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	if limit := c.MaxSize(kind); f.Size() > int64(limit) {
		return fmt.Errorf("%w: %s %q is %s, limit %s",
			ErrFileTooLarge, kind, f.Filename, formatting.FormatBytes(f.Size(), 1), limit)
	}

	if ct := f.DetectContentType(); !strings.HasPrefix(ct, string(kind)+"/") {
		return fmt.Errorf("%w: %s %q has type %s", ErrUnsupportedType, kind, f.Filename, ct)
	}

	return nil
}

func (c *Config) loadDefaults() {
	if c.MaxImageSize == 0 {
		c.MaxImageSize = 5 << 20
	}
	if c.MaxAudioSize == 0 {
		c.MaxAudioSize = 50 << 20
	}
	if c.MaxVideoSize == 0 {
		c.MaxVideoSize = 100 << 20
	}
	if c.CacheControl == "" {
		c.CacheControl = "max-age=3600"
	}
}

func (c *Config) loadEnv(env *Env) error {
	sizes := []struct {
		key    string
		target *formatting.ByteSize
	}{
		{env.MaxImageSize, &c.MaxImageSize},
		{env.MaxAudioSize, &c.MaxAudioSize},
		{env.MaxVideoSize, &c.MaxVideoSize},
	}

	for _, s := range sizes {
		v := lookup(s.key)
		if v == "" {
			continue
		}
		if err := s.target.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("%s: %w", s.key, err)
		}
	}

	if v := lookup(env.CacheControl); v != "" {
		c.CacheControl = v
	}
	return nil
}

func (c *Config) validate() error {
	for _, k := range Kinds {
		if c.MaxSize(k) <= 0 {
			return fmt.Errorf("max_%s_size must be positive", k)
		}
	}
	return nil
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
