// Package auth is the identity service: local accounts with bcrypt
// passwords, signed bearer tokens, revocation on sign-out, and optional
// acceptance of ID tokens from an external OpenID Connect issuer.
package auth

import (
	"context"
	"net/http"

	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/pkg/lifecycle"
)

// System defines the public contract for authentication.
type System interface {
	Handler() *Handler

	// Start registers the external issuer discovery hook when one is configured.
	Start(lc *lifecycle.Coordinator) error

	// SignUp creates an account. A token is issued only when confirmation is
	// not required.
	SignUp(ctx context.Context, creds Credentials) (*SignUpResult, error)
	Confirm(ctx context.Context, token string) (*User, error)
	SignIn(ctx context.Context, creds Credentials) (*Token, error)
	// SignOut revokes token until it expires.
	SignOut(ctx context.Context, token string) error
	// Verify resolves a bearer token to an identity.
	Verify(ctx context.Context, token string) (session.Identity, error)

	// Middleware attaches the caller's session to each request context.
	Middleware() func(http.Handler) http.Handler
}

// SignUpResult is the outcome of a sign-up.
type SignUpResult struct {
	User                 *User  `json:"user"`
	Token                *Token `json:"token,omitempty"`
	ConfirmationRequired bool   `json:"confirmation_required"`
}
