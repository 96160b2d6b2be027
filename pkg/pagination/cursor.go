package pagination

import (
	"encoding/base64"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidCursor is returned when a cursor token cannot be decoded.
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor marks a position in a feed ordered by (created_at, id) descending.
type Cursor struct {
	CreatedAt time.Time
	ID        string
}

// Encode returns the opaque token form of the cursor.
func (c Cursor) Encode() string {
	raw := c.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses a token produced by Cursor.Encode.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	ts, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return Cursor{}, ErrInvalidCursor
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{CreatedAt: createdAt, ID: id}, nil
}

// CursorRequest asks for the page of rows that follow After.
// A nil After starts from the newest row.
type CursorRequest struct {
	After *Cursor
	Limit int
}

// Normalize clamps the limit to the configured page sizes.
func (r *CursorRequest) Normalize(cfg Config) {
	if r.Limit < 1 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit > cfg.MaxPageSize {
		r.Limit = cfg.MaxPageSize
	}
}

// CursorRequestFromQuery parses the cursor and limit parameters from URL query values.
func CursorRequestFromQuery(values url.Values, cfg Config) (CursorRequest, error) {
	limit, _ := strconv.Atoi(values.Get("limit"))
	req := CursorRequest{Limit: limit}

	if token := values.Get("cursor"); token != "" {
		c, err := DecodeCursor(token)
		if err != nil {
			return CursorRequest{}, err
		}
		req.After = &c
	}

	req.Normalize(cfg)
	return req, nil
}

// CursorResult holds one keyset page and the token for the following page.
type CursorResult[T any] struct {
	Data       []T    `json:"data"`
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// NewCursorResult builds a CursorResult from rows fetched with limit+1.
// The extra row only signals that another page exists and is dropped.
func NewCursorResult[T any](rows []T, limit int, key func(T) Cursor) CursorResult[T] {
	if rows == nil {
		rows = []T{}
	}

	result := CursorResult[T]{Data: rows}
	if len(rows) > limit {
		result.Data = rows[:limit]
		result.HasMore = true
		result.NextCursor = key(result.Data[limit-1]).Encode()
	}

	return result
}
