// Package publishing runs the story lifecycle: creating stories with their
// attachments, editing and deleting them under the ownership rule, and the
// like and view counters.
package publishing

import (
	"context"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/internal/stories"
)

// Attachments are the optional files sent with a story.
type Attachments struct {
	Image *media.File
	Audio *media.File
	Video *media.File
}

type pending struct {
	kind media.Kind
	file *media.File
}

func (a Attachments) pending() []pending {
	var out []pending
	for _, p := range []pending{
		{media.Image, a.Image},
		{media.Audio, a.Audio},
		{media.Video, a.Video},
	} {
		if p.file != nil {
			out = append(out, p)
		}
	}
	return out
}

// Draft is a new story as submitted by its author.
type Draft struct {
	Title    string
	Body     string
	Author   string
	Category stories.Category
	Attachments
}

// Changes is a partial edit. Nil fields keep their stored value, and a
// media field without a new file keeps its URL.
type Changes struct {
	Title    *string
	Body     *string
	Author   *string
	Category *stories.Category
	Attachments
}

// System defines the story lifecycle operations. Each takes the caller's
// session explicitly.
type System interface {
	Handler() *Handler

	Create(ctx context.Context, s session.Session, d Draft) (*stories.Story, error)
	Edit(ctx context.Context, s session.Session, id uuid.UUID, c Changes) (*stories.Story, error)
	Delete(ctx context.Context, s session.Session, id uuid.UUID) error

	Like(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error)
	Unlike(ctx context.Context, s session.Session, id uuid.UUID) (*stories.Story, error)
	// View counts one view. It needs no session and never deduplicates.
	View(ctx context.Context, id uuid.UUID) (*stories.Story, error)
}
