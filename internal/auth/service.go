package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/pkg/handlers"
	"github.com/guarayo/cuentos/pkg/lifecycle"
)

type service struct {
	users    userStore
	cfg      *Config
	tokens   *issuer
	revoker  Revoker
	external *oidcVerifier
	logger   *slog.Logger

	// decoy is compared against when the email is unknown, so sign-in
	// takes the same time whether or not the account exists.
	decoy   []byte
	compare func(hash, password []byte) error
}

// New creates the authentication system. A nil revoker keeps revocations in
// process memory.
func New(db *sql.DB, cfg *Config, revoker Revoker, logger *slog.Logger) System {
	return newService(newRepo(db), cfg, revoker, logger)
}

func newService(users userStore, cfg *Config, revoker Revoker, logger *slog.Logger) *service {
	if revoker == nil {
		revoker = NewMemoryRevoker()
	}

	s := &service{
		users:   users,
		cfg:     cfg,
		tokens:  newIssuer(cfg),
		revoker: revoker,
		logger:  logger.With("system", "auth"),
		compare: bcrypt.CompareHashAndPassword,
	}

	decoy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cfg.BcryptCost)
	if err != nil {
		s.logger.Warn("decoy hash unavailable", "error", err)
	}
	s.decoy = decoy

	if cfg.OIDC.IssuerURL != "" {
		s.external = newOIDCVerifier(cfg.OIDC)
	}
	return s
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *service) Start(lc *lifecycle.Coordinator) error {
	if s.external == nil {
		return nil
	}

	s.logger.Info("registering external issuer", "issuer", s.cfg.OIDC.IssuerURL)
	lc.OnStartup("oidc", func() error {
		return s.external.discover(lc.Context())
	})
	return nil
}

func (s *service) SignUp(ctx context.Context, creds Credentials) (*SignUpResult, error) {
	creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	confirmed := !s.cfg.RequireConfirmation
	user, err := s.users.create(ctx, creds.Email, string(hash), confirmed)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account created", "id", user.ID, "confirmed", confirmed)

	if !confirmed {
		token, _, err := s.tokens.issue(user.Identity(), purposeConfirm, s.cfg.ConfirmationTTLDuration())
		if err != nil {
			return nil, err
		}
		if s.cfg.LogConfirmations {
			s.logger.Info("confirmation token issued", "email", user.Email, "token", token)
		}
		return &SignUpResult{User: user, ConfirmationRequired: true}, nil
	}

	token, err := s.accessToken(user.Identity())
	if err != nil {
		return nil, err
	}
	return &SignUpResult{User: user, Token: token}, nil
}

func (s *service) Confirm(ctx context.Context, raw string) (*User, error) {
	c, err := s.tokens.parse(raw, purposeConfirm)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.users.confirm(ctx, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("account confirmed", "id", user.ID)
	return user, nil
}

func (s *service) SignIn(ctx context.Context, creds Credentials) (*Token, error) {
	creds.Normalize()

	user, err := s.users.findByEmail(ctx, creds.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.compare(s.decoy, []byte(creds.Password))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := s.compare([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if !user.Confirmed() {
		return nil, ErrNotConfirmed
	}

	return s.accessToken(user.Identity())
}

func (s *service) SignOut(ctx context.Context, raw string) error {
	c, err := s.tokens.parse(raw, purposeAccess)
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return nil
		}
		return err
	}

	if err := s.revoker.Revoke(ctx, c.ID, c.ExpiresAt.Time); err != nil {
		return err
	}

	s.logger.Info("signed out", "identity", c.Subject)
	return nil
}

func (s *service) Verify(ctx context.Context, raw string) (session.Identity, error) {
	c, err := s.tokens.parse(raw, purposeAccess)
	if err == nil {
		revoked, err := s.revoker.Revoked(ctx, c.ID)
		if err != nil {
			return session.Identity{}, err
		}
		if revoked {
			return session.Identity{}, ErrTokenRevoked
		}
		return c.identity(), nil
	}

	if errors.Is(err, ErrTokenExpired) || s.external == nil {
		return session.Identity{}, err
	}

	return s.external.Verify(ctx, raw)
}

func (s *service) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := BearerToken(r)
			if !ok {
				if r.Header.Get("Authorization") != "" {
					handlers.RespondError(w, s.logger, http.StatusUnauthorized, ErrInvalidToken)
					return
				}
				next.ServeHTTP(w, r.WithContext(session.WithContext(r.Context(), session.AnonymousSession())))
				return
			}

			id, err := s.Verify(r.Context(), raw)
			if err != nil {
				handlers.RespondError(w, s.logger, MapHTTPStatus(err), err)
				return
			}

			ctx := session.WithContext(r.Context(), session.AuthenticatedSession(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (s *service) accessToken(id session.Identity) (*Token, error) {
	signed, expires, err := s.tokens.issue(id, purposeAccess, s.cfg.TokenTTLDuration())
	if err != nil {
		return nil, err
	}
	return &Token{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
		Identity:    id,
	}, nil
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
