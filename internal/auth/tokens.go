package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/guarayo/cuentos/internal/session"
)

const (
	purposeAccess  = "access"
	purposeConfirm = "confirm"
)

type claims struct {
	Email   string `json:"email,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

func (c *claims) identity() session.Identity {
	return session.Identity{ID: c.Subject, Email: c.Email}
}

// Token is an issued bearer token.
type Token struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	ExpiresAt   time.Time        `json:"expires_at"`
	Identity    session.Identity `json:"identity"`
}

type issuer struct {
	secret []byte
	name   string
	now    func() time.Time
}

func newIssuer(cfg *Config) *issuer {
	return &issuer{
		secret: []byte(cfg.Secret),
		name:   cfg.Issuer,
		now:    time.Now,
	}
}

func (i *issuer) issue(id session.Identity, purpose string, ttl time.Duration) (string, time.Time, error) {
	now := i.now()
	expires := now.Add(ttl)

	c := claims{
		Email:   id.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.name,
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expires, nil
}

func (i *issuer) parse(raw, purpose string) (*claims, error) {
	var c claims

	_, err := jwt.ParseWithClaims(raw, &c,
		func(*jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.name),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if c.Purpose != purpose || c.Subject == "" || c.ID == "" {
		return nil, ErrInvalidToken
	}
	return &c, nil
}
