package stories

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/pkg/pagination"
	"github.com/guarayo/cuentos/pkg/query"
	"github.com/guarayo/cuentos/pkg/repository"
)

type repo struct {
	stories    repository.Store[Story]
	counts     repository.Store[CategoryCount]
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a story repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		stories:    repository.NewStore(db, scanStory, ErrNotFound, ErrDuplicate),
		counts:     repository.NewStore(db, scanCategoryCount, ErrNotFound, ErrDuplicate),
		logger:     logger.With("system", "stories"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) All(ctx context.Context) ([]Story, error) {
	all := make([]Story, 0)
	req := pagination.CursorRequest{Limit: r.pagination.MaxPageSize}

	for {
		page, err := r.Page(ctx, req, Filters{})
		if err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasMore {
			return all, nil
		}
		last := cursorOf(page.Data[len(page.Data)-1])
		req.After = &last
	}
}

func (r *repo) Page(
	ctx context.Context,
	req pagination.CursorRequest,
	filters Filters,
) (*pagination.CursorResult[Story], error) {
	req.Normalize(r.pagination)

	q, args, err := pageQuery(req, filters)
	if err != nil {
		return nil, err
	}

	rows, err := r.stories.Many(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query stories: %w", err)
	}

	result := pagination.NewCursorResult(rows, req.Limit, cursorOf)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Story, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)
	return r.stories.One(ctx, q, args...)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Story, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.ID == uuid.Nil {
		cmd.ID = uuid.New()
	}

	var createdAt *time.Time
	if !cmd.CreatedAt.IsZero() {
		createdAt = &cmd.CreatedAt
	}

	q := `
		INSERT INTO stories(id, title, body, author, category, created_at, image_url, audio_url, video_url, owner_id)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), $7, $8, $9, $10)
		RETURNING ` + columns

	args := []any{
		cmd.ID,
		cmd.Title,
		cmd.Body,
		cmd.Author,
		string(cmd.Category),
		createdAt,
		cmd.ImageURL,
		cmd.AudioURL,
		cmd.VideoURL,
		cmd.OwnerID,
	}

	s, err := r.stories.One(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	r.logger.Info("story created", "id", s.ID, "category", s.Category)
	return s, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Story, error) {
	cmd.Normalize()
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	if cmd.Empty() {
		return r.Find(ctx, id)
	}

	var category *string
	if cmd.Category != nil {
		c := string(*cmd.Category)
		category = &c
	}

	q := `
		UPDATE stories SET
			title = COALESCE($2, title),
			body = COALESCE($3, body),
			author = COALESCE($4, author),
			category = COALESCE($5, category),
			image_url = COALESCE($6, image_url),
			audio_url = COALESCE($7, audio_url),
			video_url = COALESCE($8, video_url)
		WHERE id = $1
		RETURNING ` + columns

	args := []any{id, cmd.Title, cmd.Body, cmd.Author, category, cmd.ImageURL, cmd.AudioURL, cmd.VideoURL}

	s, err := r.stories.One(ctx, q, args...)
	if err != nil {
		return nil, err
	}

	r.logger.Info("story updated", "id", id)
	return s, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.stories.ExecOne(ctx, "DELETE FROM stories WHERE id = $1", id); err != nil {
		return err
	}

	r.logger.Info("story deleted", "id", id)
	return nil
}

func (r *repo) IncrementLikes(ctx context.Context, id uuid.UUID) (*Story, error) {
	return r.counter(ctx, id, "like_count = like_count + 1")
}

func (r *repo) DecrementLikes(ctx context.Context, id uuid.UUID) (*Story, error) {
	return r.counter(ctx, id, "like_count = GREATEST(like_count - 1, 0)")
}

func (r *repo) IncrementViews(ctx context.Context, id uuid.UUID) (*Story, error) {
	return r.counter(ctx, id, "view_count = view_count + 1")
}

func (r *repo) Stats(ctx context.Context) ([]CategoryCount, error) {
	q, args := query.NewBuilder(projection).BuildGroupCount("Category")

	rows, err := r.counts.Many(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("count stories by category: %w", err)
	}

	return knownCounts(rows), nil
}

// counter applies set as one atomic UPDATE.
func (r *repo) counter(ctx context.Context, id uuid.UUID, set string) (*Story, error) {
	q := "UPDATE stories SET " + set + " WHERE id = $1 RETURNING " + columns

	return r.stories.One(ctx, q, id)
}

func pageQuery(req pagination.CursorRequest, filters Filters) (string, []any, error) {
	qb := query.NewBuilder(projection, feedSort...)
	filters.Apply(qb)

	if req.After != nil {
		id, err := uuid.Parse(req.After.ID)
		if err != nil {
			return "", nil, pagination.ErrInvalidCursor
		}
		qb.WhereKeyset(feedKey, []any{req.After.CreatedAt, id}, true)
	}

	q, args := qb.BuildLimit(req.Limit + 1)
	return q, args, nil
}

func cursorOf(s Story) pagination.Cursor {
	return pagination.Cursor{CreatedAt: s.CreatedAt, ID: s.ID.String()}
}

func knownCounts(rows []CategoryCount) []CategoryCount {
	counts := make(map[Category]int, len(rows))
	for _, row := range rows {
		counts[row.Category] = row.Count
	}

	result := make([]CategoryCount, len(Categories))
	for i, c := range Categories {
		result[i] = CategoryCount{Category: c, Label: c.Label(), Count: counts[c]}
	}
	return result
}
