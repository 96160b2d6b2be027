package client

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/listing"
	"github.com/guarayo/cuentos/internal/publishing"
	"github.com/guarayo/cuentos/internal/stories"
)

// Library is the in-memory story list of a reader. Every mutation goes
// through the API and the list takes the story the API returns.
type Library struct {
	client *Client

	mu    sync.RWMutex
	items []stories.Story
}

func NewLibrary(c *Client) *Library {
	return &Library{client: c}
}

// Refresh replaces the list with the full feed.
func (l *Library) Refresh(ctx context.Context) error {
	all, err := l.client.AllStories(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.items = all
	l.mu.Unlock()
	return nil
}

// Items returns a copy of the list, newest first.
func (l *Library) Items() []stories.Story {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

// Create publishes d and puts the new story at the front of the list.
func (l *Library) Create(ctx context.Context, d publishing.Draft) (*stories.Story, error) {
	s, err := l.client.CreateStory(ctx, d)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.items = slices.Insert(l.items, 0, *s)
	l.mu.Unlock()
	return s, nil
}

func (l *Library) Update(ctx context.Context, id uuid.UUID, ch publishing.Changes) (*stories.Story, error) {
	return l.replace(l.client.EditStory(ctx, id, ch))
}

func (l *Library) Like(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return l.replace(l.client.Like(ctx, id))
}

func (l *Library) Unlike(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return l.replace(l.client.Unlike(ctx, id))
}

// Open counts a view of the story and returns its current copy.
func (l *Library) Open(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return l.replace(l.client.View(ctx, id))
}

func (l *Library) Delete(ctx context.Context, id uuid.UUID) error {
	if err := l.client.DeleteStory(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	l.items = slices.DeleteFunc(l.items, func(s stories.Story) bool { return s.ID == id })
	l.mu.Unlock()
	return nil
}

// View filters and sorts the list without changing it.
func (l *Library) View(q listing.Query) []stories.Story {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return listing.View(l.items, q)
}

// Stats counts the list by category.
func (l *Library) Stats() []stories.CategoryCount {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return listing.CategoryStats(l.items)
}

func (l *Library) replace(s *stories.Story, err error) (*stories.Story, error) {
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if i := slices.IndexFunc(l.items, func(x stories.Story) bool { return x.ID == s.ID }); i >= 0 {
		l.items[i] = *s
	}
	l.mu.Unlock()
	return s, nil
}
