package auth

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/guarayo/cuentos/pkg/query"
	"github.com/guarayo/cuentos/pkg/repository"
)

type userStore interface {
	create(ctx context.Context, email, hash string, confirmed bool) (*User, error)
	findByEmail(ctx context.Context, email string) (*User, error)
	confirm(ctx context.Context, id uuid.UUID) (*User, error)
}

type repo struct {
	users repository.Store[User]
}

func newRepo(db *sql.DB) *repo {
	return &repo{users: repository.NewStore(db, scanUser, ErrUserNotFound, ErrDuplicate)}
}

func (r *repo) create(ctx context.Context, email, hash string, confirmed bool) (*User, error) {
	q := `
		INSERT INTO users(id, email, password_hash, confirmed_at)
		VALUES ($1, $2, $3, CASE WHEN $4::boolean THEN now() END)
		RETURNING ` + userColumns

	return r.users.One(ctx, q, uuid.New(), email, hash, confirmed)
}

func (r *repo) findByEmail(ctx context.Context, email string) (*User, error) {
	q, args := query.NewBuilder(userProjection).BuildSingle("Email", email)

	return r.users.One(ctx, q, args...)
}

func (r *repo) confirm(ctx context.Context, id uuid.UUID) (*User, error) {
	q := `
		UPDATE users SET confirmed_at = COALESCE(confirmed_at, now())
		WHERE id = $1
		RETURNING ` + userColumns

	return r.users.One(ctx, q, id)
}
