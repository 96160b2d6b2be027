package media

import (
	"strings"
	"testing"
	"time"
)

func TestExtension(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"foto.JPG", "jpg"},
		{"archive.tar.gz", "gz"},
		{"noext", "bin"},
		{"trailing.", "bin"},
		{"", "bin"},
		{".hidden", "hidden"},
		{"weird.m p3", "mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := extension(tt.filename); got != tt.want {
				t.Errorf("extension(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name := objectName(now, "song.MP3")

	if !strings.HasPrefix(name, "1700000000123-") {
		t.Errorf("name = %q, want millisecond timestamp prefix", name)
	}
	if !strings.HasSuffix(name, ".mp3") {
		t.Errorf("name = %q, want .mp3 suffix", name)
	}
}
