package publishing

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/internal/stories"
)

type controller struct {
	stories stories.System
	media   media.System
	logger  *slog.Logger
	maxBody int64

	creates *inflight
	edits   *inflight
}

// New creates the lifecycle controller. maxBody bounds the size of a
// multipart request accepted by the handler.
func New(st stories.System, md media.System, maxBody int64, logger *slog.Logger) System {
	return &controller{
		stories: st,
		media:   md,
		logger:  logger.With("system", "publishing"),
		maxBody: maxBody,
		creates: newInflight(),
		edits:   newInflight(),
	}
}

func (c *controller) Handler() *Handler {
	return NewHandler(c, c.logger, c.maxBody)
}

func (c *controller) Create(ctx context.Context, s session.Session, d Draft) (*stories.Story, error) {
	if err := s.Require(); err != nil {
		return nil, err
	}

	owner := s.IdentityID()
	cmd := stories.CreateCommand{
		Title:    d.Title,
		Body:     d.Body,
		Author:   d.Author,
		Category: d.Category,
		OwnerID:  &owner,
	}
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := c.check(d.Attachments); err != nil {
		return nil, err
	}

	release, err := c.creates.acquire(owner)
	if err != nil {
		return nil, err
	}
	defer release()

	assets, err := c.uploadAll(ctx, d.Attachments)
	if err != nil {
		return nil, err
	}
	cmd.ImageURL = assets.url(media.Image)
	cmd.AudioURL = assets.url(media.Audio)
	cmd.VideoURL = assets.url(media.Video)

	story, err := c.stories.Create(ctx, cmd)
	if err != nil {
		c.discard(ctx, assets.urls()...)
		return nil, err
	}

	c.logger.Info("story published", "id", story.ID, "owner", owner, "attachments", len(assets))
	return story, nil
}

func (c *controller) Edit(ctx context.Context, s session.Session, id uuid.UUID, ch Changes) (*stories.Story, error) {
	if err := s.Require(); err != nil {
		return nil, err
	}

	release, err := c.edits.acquire(id.String())
	if err != nil {
		return nil, err
	}
	defer release()

	current, err := c.authorize(ctx, s, id)
	if err != nil {
		return nil, err
	}

	cmd := stories.UpdateCommand{
		Title:    ch.Title,
		Body:     ch.Body,
		Author:   ch.Author,
		Category: ch.Category,
	}
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := c.check(ch.Attachments); err != nil {
		return nil, err
	}

	assets, err := c.uploadAll(ctx, ch.Attachments)
	if err != nil {
		return nil, err
	}
	cmd.ImageURL = assets.url(media.Image)
	cmd.AudioURL = assets.url(media.Audio)
	cmd.VideoURL = assets.url(media.Video)

	updated, err := c.stories.Update(ctx, id, cmd)
	if err != nil {
		c.discard(ctx, assets.urls()...)
		return nil, err
	}

	var replaced []string
	for kind := range assets {
		if old := mediaURL(current, kind); old != nil && *old != "" {
			replaced = append(replaced, *old)
		}
	}
	c.discard(ctx, replaced...)

	c.logger.Info("story edited", "id", id, "replaced", len(replaced))
	return updated, nil
}

func (c *controller) Delete(ctx context.Context, s session.Session, id uuid.UUID) error {
	if err := s.Require(); err != nil {
		return err
	}

	current, err := c.authorize(ctx, s, id)
	if err != nil {
		return err
	}

	if err := c.stories.Delete(ctx, id); err != nil {
		return err
	}

	var urls []string
	for _, kind := range media.Kinds {
		if u := mediaURL(current, kind); u != nil && *u != "" {
			urls = append(urls, *u)
		}
	}
	c.discard(ctx, urls...)

	c.logger.Info("story deleted", "id", id)
	return nil
}

func (c *controller) Like(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error) {
	if err := s.Require(); err != nil {
		return nil, err
	}
	return c.stories.IncrementLikes(ctx, id)
}

func (c *controller) Unlike(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error) {
	if err := s.Require(); err != nil {
		return nil, err
	}
	return c.stories.DecrementLikes(ctx, id)
}

func (c *controller) View(ctx context.Context, id uuid.UUID) (*stories.Story, error) {
	return c.stories.IncrementViews(ctx, id)
}

// authorize loads the story and applies the ownership rule.
func (c *controller) authorize(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error) {
	current, err := c.stories.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.CanMutate(current.OwnerID) {
		c.logger.Warn("mutation rejected", "id", id, "identity", s.IdentityID())
		return nil, ErrForbidden
	}
	return current, nil
}

func (c *controller) check(a Attachments) error {
	for _, p := range a.pending() {
		if err := c.media.Check(*p.file, p.kind); err != nil {
			return err
		}
	}
	return nil
}

type uploaded map[media.Kind]*media.Asset

func (u uploaded) url(kind media.Kind) *string {
	if a, ok := u[kind]; ok {
		return &a.URL
	}
	return nil
}

func (u uploaded) urls() []string {
	out := make([]string, 0, len(u))
	for _, a := range u {
		out = append(out, a.URL)
	}
	return out
}

// uploadAll uploads every present attachment concurrently. When any upload
// fails the ones that succeeded are removed and the first failure is returned.
func (c *controller) uploadAll(ctx context.Context, a Attachments) (uploaded, error) {
	todo := a.pending()
	results := make([]*media.Asset, len(todo))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range todo {
		g.Go(func() error {
			asset, err := c.media.Upload(gctx, *p.file, p.kind)
			if err != nil {
				return err
			}
			results[i] = asset
			return nil
		})
	}
	err := g.Wait()

	assets := make(uploaded, len(todo))
	for _, asset := range results {
		if asset != nil {
			assets[asset.Kind] = asset
		}
	}

	if err != nil {
		c.discard(ctx, assets.urls()...)
		return nil, err
	}
	return assets, nil
}

// discard removes objects that are no longer referenced. Failures are logged
// and leave an orphaned object behind.
func (c *controller) discard(ctx context.Context, urls ...string) {
	if len(urls) == 0 {
		return
	}

	ctx = context.WithoutCancel(ctx)
	for _, u := range urls {
		if err := c.media.Remove(ctx, u); err != nil {
			c.logger.Warn("orphaned media object", "url", u, "error", err)
		}
	}
}

func mediaURL(s *stories.Story, kind media.Kind) *string {
	switch kind {
	case media.Image:
		return s.ImageURL
	case media.Audio:
		return s.AudioURL
	case media.Video:
		return s.VideoURL
	}
	return nil
}
