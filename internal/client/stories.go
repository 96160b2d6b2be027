package client

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/internal/publishing"
	"github.com/guarayo/cuentos/internal/stories"
	"github.com/guarayo/cuentos/pkg/pagination"
)

// Feed returns one page of the newest-first story feed. An empty cursor
// starts from the newest story.
func (c *Client) Feed(ctx context.Context, cursor string, limit int) (*pagination.CursorResult[stories.Story], error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/stories"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page pagination.CursorResult[stories.Story]
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AllStories walks the feed to its end.
func (c *Client) AllStories(ctx context.Context) ([]stories.Story, error) {
	var all []stories.Story
	cursor := ""
	for {
		page, err := c.Feed(ctx, cursor, 0)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore || page.NextCursor == "" {
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func (c *Client) Story(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	var s stories.Story
	if err := c.doJSON(ctx, http.MethodGet, "/stories/"+id.String(), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Categories returns the story count of every known category.
func (c *Client) Categories(ctx context.Context) ([]stories.CategoryCount, error) {
	var counts []stories.CategoryCount
	if err := c.doJSON(ctx, http.MethodGet, "/stories/categories", nil, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (c *Client) CreateStory(ctx context.Context, d publishing.Draft) (*stories.Story, error) {
	fields := map[string]*string{
		"title":    &d.Title,
		"body":     &d.Body,
		"author":   &d.Author,
		"category": ptr(string(d.Category)),
	}
	return c.sendForm(ctx, http.MethodPost, "/stories", fields, d.Attachments)
}

// EditStory sends only the fields set in ch.
func (c *Client) EditStory(ctx context.Context, id uuid.UUID, ch publishing.Changes) (*stories.Story, error) {
	fields := map[string]*string{
		"title":  ch.Title,
		"body":   ch.Body,
		"author": ch.Author,
	}
	if ch.Category != nil {
		fields["category"] = ptr(string(*ch.Category))
	}
	return c.sendForm(ctx, http.MethodPut, "/stories/"+id.String(), fields, ch.Attachments)
}

func (c *Client) DeleteStory(ctx context.Context, id uuid.UUID) error {
	return c.doJSON(ctx, http.MethodDelete, "/stories/"+id.String(), nil, nil)
}

func (c *Client) Like(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return c.counter(ctx, http.MethodPost, id, "likes")
}

func (c *Client) Unlike(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return c.counter(ctx, http.MethodDelete, id, "likes")
}

func (c *Client) View(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return c.counter(ctx, http.MethodPost, id, "views")
}

func (c *Client) counter(ctx context.Context, method string, id uuid.UUID, name string) (*stories.Story, error) {
	var s stories.Story
	if err := c.doJSON(ctx, method, "/stories/"+id.String()+"/"+name, nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) sendForm(ctx context.Context, method, path string, fields map[string]*string, a publishing.Attachments) (*stories.Story, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if value == nil {
			continue
		}
		if err := w.WriteField(name, *value); err != nil {
			return nil, fmt.Errorf("encode form: %w", err)
		}
	}

	files := map[media.Kind]*media.File{media.Image: a.Image, media.Audio: a.Audio, media.Video: a.Video}
	for kind, f := range files {
		if f == nil {
			continue
		}
		if err := writeFile(w, string(kind), f); err != nil {
			return nil, err
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}

	req, err := c.newRequest(ctx, method, path, &buf, w.FormDataContentType())
	if err != nil {
		return nil, err
	}

	var s stories.Story
	if err := c.send(req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func writeFile(w *multipart.Writer, field string, f *media.File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition(field, f.Filename))
	h.Set("Content-Type", f.DetectContentType())

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("encode %s: %w", field, err)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
