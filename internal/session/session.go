// Package session carries the authentication state of a caller.
//
// A Session is an explicit value: handlers attach it to the request context
// and the publishing controller receives it as an argument. Provider tracks
// the session of a long-lived client across sign-in, sign-out, and
// externally triggered changes.
package session

import (
	"context"
	"errors"
)

// ErrUnauthenticated is returned when an operation requires a signed-in identity.
var ErrUnauthenticated = errors.New("must sign in")

// State is the authentication state of a session.
type State int

const (
	Unknown State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name; unrecognized names decode as Unknown.
func (s *State) UnmarshalText(text []byte) error {
	switch string(text) {
	case "anonymous":
		*s = Anonymous
	case "authenticated":
		*s = Authenticated
	default:
		*s = Unknown
	}
	return nil
}

// Identity is an authenticated principal.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}

// Session is the authentication state of one caller.
type Session struct {
	State    State     `json:"state"`
	Identity *Identity `json:"identity,omitempty"`
}

// AnonymousSession returns a resolved session without an identity.
func AnonymousSession() Session {
	return Session{State: Anonymous}
}

// AuthenticatedSession returns a session for id.
func AuthenticatedSession(id Identity) Session {
	return Session{State: Authenticated, Identity: &id}
}

// IsAuthenticated reports whether the session has an identity.
func (s Session) IsAuthenticated() bool {
	return s.State == Authenticated && s.Identity != nil
}

// IdentityID returns the identity id, or "" for sessions without one.
func (s Session) IdentityID() string {
	if !s.IsAuthenticated() {
		return ""
	}
	return s.Identity.ID
}

// Require returns ErrUnauthenticated unless the session is authenticated.
func (s Session) Require() error {
	if !s.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return nil
}

// CanMutate reports whether the session may change a record owned by ownerID.
// Records without an owner are unrestricted.
func (s Session) CanMutate(ownerID *string) bool {
	if ownerID == nil || *ownerID == "" {
		return true
	}
	return s.IsAuthenticated() && s.Identity.ID == *ownerID
}

// Equal reports whether two sessions have the same state and identity.
func (s Session) Equal(other Session) bool {
	if s.State != other.State {
		return false
	}
	if s.Identity == nil || other.Identity == nil {
		return s.Identity == other.Identity
	}
	return *s.Identity == *other.Identity
}

type contextKey struct{}

// WithContext returns a copy of ctx carrying s.
func WithContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, or an anonymous session.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(contextKey{}).(Session); ok {
		return s
	}
	return AnonymousSession()
}
