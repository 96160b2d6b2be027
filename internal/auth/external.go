package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/guarayo/cuentos/internal/session"
)

// ExternalVerifier accepts ID tokens from an external identity provider.
type ExternalVerifier interface {
	Verify(ctx context.Context, raw string) (session.Identity, error)
}

type oidcVerifier struct {
	cfg OIDCConfig

	mu       sync.RWMutex
	verifier *oidc.IDTokenVerifier
}

func newOIDCVerifier(cfg OIDCConfig) *oidcVerifier {
	return &oidcVerifier{cfg: cfg}
}

// discover fetches the issuer's discovery document and signing keys.
func (v *oidcVerifier) discover(ctx context.Context) error {
	provider, err := oidc.NewProvider(ctx, v.cfg.IssuerURL)
	if err != nil {
		return fmt.Errorf("discover oidc issuer: %w", err)
	}

	v.mu.Lock()
	v.verifier = provider.Verifier(&oidc.Config{ClientID: v.cfg.ClientID})
	v.mu.Unlock()
	return nil
}

func (v *oidcVerifier) Verify(ctx context.Context, raw string) (session.Identity, error) {
	v.mu.RLock()
	verifier := v.verifier
	v.mu.RUnlock()

	if verifier == nil {
		return session.Identity{}, ErrInvalidToken
	}

	token, err := verifier.Verify(ctx, raw)
	if err != nil {
		var expired *oidc.TokenExpiredError
		if errors.As(err, &expired) {
			return session.Identity{}, ErrTokenExpired
		}
		return session.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var extra struct {
		Email string `json:"email"`
	}
	if err := token.Claims(&extra); err != nil {
		return session.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	return session.Identity{ID: ExternalID(token.Issuer, token.Subject), Email: extra.Email}, nil
}

// ExternalID returns the identity id of an external subject. The "oidc:"
// prefix and issuer keep it apart from local user UUIDs and from equal
// subjects of other issuers.
func ExternalID(issuer, subject string) string {
	return "oidc:" + issuer + "#" + subject
}
