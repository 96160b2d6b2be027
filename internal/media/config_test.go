package media_test

import (
	"testing"

	"github.com/guarayo/cuentos/internal/media"
)

func TestConfigDefaults(t *testing.T) {
	var cfg media.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.MaxImageSize != 5<<20 || cfg.MaxAudioSize != 50<<20 || cfg.MaxVideoSize != 100<<20 {
		t.Errorf("limits = %s %s %s", cfg.MaxImageSize, cfg.MaxAudioSize, cfg.MaxVideoSize)
	}
	if cfg.CacheControl != "max-age=3600" {
		t.Errorf("CacheControl = %q", cfg.CacheControl)
	}
	if cfg.MaxTotalSize() != 155<<20 {
		t.Errorf("MaxTotalSize() = %d", cfg.MaxTotalSize())
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("TEST_MEDIA_IMAGE", "2MB")
	t.Setenv("TEST_MEDIA_CACHE", "max-age=60")

	var cfg media.Config
	err := cfg.Finalize(&media.Env{MaxImageSize: "TEST_MEDIA_IMAGE", CacheControl: "TEST_MEDIA_CACHE"})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.MaxImageSize != 2<<20 {
		t.Errorf("MaxImageSize = %s, want 2 MB", cfg.MaxImageSize)
	}
	if cfg.CacheControl != "max-age=60" {
		t.Errorf("CacheControl = %q", cfg.CacheControl)
	}
}

func TestConfigEnvInvalid(t *testing.T) {
	t.Setenv("TEST_MEDIA_VIDEO", "lots")

	var cfg media.Config
	if err := cfg.Finalize(&media.Env{MaxVideoSize: "TEST_MEDIA_VIDEO"}); err == nil {
		t.Error("Finalize() should reject an unparseable size")
	}
}

func TestConfigMerge(t *testing.T) {
	base := media.Config{MaxImageSize: 1, CacheControl: "a"}
	base.Merge(&media.Config{MaxImageSize: 9})

	if base.MaxImageSize != 9 || base.CacheControl != "a" {
		t.Errorf("Merge() = %+v", base)
	}
}
