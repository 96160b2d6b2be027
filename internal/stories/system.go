package stories

import (
	"context"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/pkg/pagination"
)

// System defines the public contract for story persistence.
// Every method is a single round trip to the store.
type System interface {
	Handler() *Handler

	// All returns every story, newest first.
	All(ctx context.Context) ([]Story, error)

	Page(
		ctx context.Context,
		req pagination.CursorRequest,
		filters Filters,
	) (*pagination.CursorResult[Story], error)

	Find(ctx context.Context, id uuid.UUID) (*Story, error)
	Create(ctx context.Context, cmd CreateCommand) (*Story, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Story, error)
	Delete(ctx context.Context, id uuid.UUID) error

	IncrementLikes(ctx context.Context, id uuid.UUID) (*Story, error)
	DecrementLikes(ctx context.Context, id uuid.UUID) (*Story, error)
	IncrementViews(ctx context.Context, id uuid.UUID) (*Story, error)

	// Stats counts stories in each known category.
	Stats(ctx context.Context) ([]CategoryCount, error)
}
