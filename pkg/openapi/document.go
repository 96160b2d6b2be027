package openapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
)

// Document is a serialized Spec ready to be served.
// The bytes never change after construction, so a content hash serves as its ETag.
type Document struct {
	data []byte
	etag string
}

// NewDocument serializes spec to indented JSON.
func NewDocument(spec *Spec) (*Document, error) {
	data, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal openapi document: %w", err)
	}

	sum := sha256.Sum256(data)
	return &Document{
		data: data,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
	}, nil
}

// Bytes returns the serialized document.
func (d *Document) Bytes() []byte {
	return d.data
}

// ETag returns the quoted entity tag of the document.
func (d *Document) ETag() string {
	return d.etag
}

// ServeHTTP writes the document, answering 304 when the client already holds it.
func (d *Document) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", d.etag)
	w.Header().Set("Cache-Control", "no-cache")

	if r.Header.Get("If-None-Match") == d.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(d.data)
}
