package session

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Authenticator is the identity service a Provider drives.
type Authenticator interface {
	// CurrentSession resolves the session already established, if any.
	CurrentSession(ctx context.Context) (Session, error)
	// Subscribe registers fn for session changes the service initiates
	// (token expiry, revocation). The returned function unsubscribes.
	Subscribe(fn func(Session)) (unsubscribe func())
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
}

// Provider holds the current session of a client and notifies watchers on
// every transition. It starts Unknown and resolves on Start.
//
// Watchers run in registration order and see transitions in the order they
// happened. A watcher may call back into the Provider; the resulting
// transition is delivered after the current one completes.
type Provider struct {
	auth   Authenticator
	logger *slog.Logger

	mu          sync.Mutex
	current     Session
	watchers    []watcher
	nextWatcher int
	unsubscribe func()

	pending    []Session
	delivering bool
}

type watcher struct {
	id int
	fn func(Session)
}

// NewProvider creates a Provider in the Unknown state.
func NewProvider(auth Authenticator, logger *slog.Logger) *Provider {
	return &Provider{
		auth:   auth,
		logger: logger.With("system", "session"),
	}
}

// Start subscribes to the authenticator and resolves the initial session.
// If resolution fails the provider becomes Anonymous and the error is returned.
func (p *Provider) Start(ctx context.Context) error {
	p.mu.Lock()
	subscribed := p.unsubscribe != nil
	p.mu.Unlock()

	if !subscribed {
		unsubscribe := p.auth.Subscribe(p.transition)
		p.mu.Lock()
		p.unsubscribe = unsubscribe
		p.mu.Unlock()
	}

	s, err := p.auth.CurrentSession(ctx)
	if err != nil {
		p.logger.Warn("session resolution failed", "error", err)
		s = AnonymousSession()
	}

	p.mu.Lock()
	resolved := p.current.State != Unknown
	p.mu.Unlock()

	// A pushed change that arrived while resolving is newer.
	if !resolved {
		p.transition(s)
	}
	return err
}

// Close unsubscribes from the authenticator.
func (p *Provider) Close() {
	p.mu.Lock()
	unsubscribe := p.unsubscribe
	p.unsubscribe = nil
	p.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Current returns the current session.
func (p *Provider) Current() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Watch registers fn to receive every session transition.
// The returned function removes the watcher.
func (p *Provider) Watch(fn func(Session)) (cancel func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextWatcher
	p.nextWatcher++
	p.watchers = append(p.watchers, watcher{id: id, fn: fn})

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.watchers = slices.DeleteFunc(p.watchers, func(w watcher) bool { return w.id == id })
	}
}

// SignUp registers an account. It never changes the session: whether the new
// account is signed in is up to the identity service, so callers re-check
// Current or wait for a pushed change.
func (p *Provider) SignUp(ctx context.Context, email, password string) error {
	return p.auth.SignUp(ctx, email, password)
}

// SignIn authenticates and transitions on success. On failure the session
// is left unchanged.
func (p *Provider) SignIn(ctx context.Context, email, password string) (Session, error) {
	s, err := p.auth.SignIn(ctx, email, password)
	if err != nil {
		return p.Current(), err
	}
	p.transition(s)
	return s, nil
}

// SignOut transitions to Anonymous before contacting the identity service,
// so no mutation affordance outlives the request. Remote failures are
// returned but do not restore the previous session.
func (p *Provider) SignOut(ctx context.Context) error {
	p.transition(AnonymousSession())

	if err := p.auth.SignOut(ctx); err != nil {
		p.logger.Warn("remote sign out failed", "error", err)
		return err
	}
	return nil
}

// transition records s and delivers it. Only one goroutine delivers at a
// time; transitions arriving meanwhile are queued and drained in order by
// the active deliverer.
func (p *Provider) transition(s Session) {
	p.mu.Lock()
	if p.current.Equal(s) {
		p.mu.Unlock()
		return
	}
	p.current = s
	p.pending = append(p.pending, s)

	if p.delivering {
		p.mu.Unlock()
		return
	}
	p.delivering = true

	for len(p.pending) > 0 {
		next := p.pending[0]
		p.pending = p.pending[1:]
		watchers := slices.Clone(p.watchers)
		p.mu.Unlock()

		p.logger.Debug("session changed", "state", next.State, "identity", next.IdentityID())
		for _, w := range watchers {
			w.fn(next)
		}

		p.mu.Lock()
	}

	p.delivering = false
	p.mu.Unlock()
}
