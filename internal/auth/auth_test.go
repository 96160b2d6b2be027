package auth_test

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/guarayo/cuentos/internal/auth"
	"github.com/guarayo/cuentos/internal/session"
	"github.com/guarayo/cuentos/pkg/repository"
)

func TestConfigDefaults(t *testing.T) {
	cfg := &auth.Config{Secret: strings.Repeat("k", 32)}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if cfg.Issuer != "cuentos" {
		t.Errorf("Issuer = %q, want cuentos", cfg.Issuer)
	}
	if got := cfg.TokenTTLDuration().String(); got != "24h0m0s" {
		t.Errorf("TokenTTL = %s, want 24h", got)
	}
	if got := cfg.ConfirmationTTLDuration().String(); got != "48h0m0s" {
		t.Errorf("ConfirmationTTL = %s, want 48h", got)
	}
	if cfg.RequireConfirmation {
		t.Error("RequireConfirmation should default to false")
	}
}

func TestConfigEnv(t *testing.T) {
	t.Setenv("CUENTOS_AUTH_SECRET", strings.Repeat("e", 40))
	t.Setenv("CUENTOS_AUTH_TOKEN_TTL", "2h")
	t.Setenv("CUENTOS_AUTH_REQUIRE_CONFIRMATION", "true")
	t.Setenv("CUENTOS_AUTH_BCRYPT_COST", "6")

	cfg := &auth.Config{}
	err := cfg.Finalize(&auth.Env{
		Secret:              "CUENTOS_AUTH_SECRET",
		TokenTTL:            "CUENTOS_AUTH_TOKEN_TTL",
		RequireConfirmation: "CUENTOS_AUTH_REQUIRE_CONFIRMATION",
		BcryptCost:          "CUENTOS_AUTH_BCRYPT_COST",
	})
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if len(cfg.Secret) != 40 || cfg.TokenTTL != "2h" || !cfg.RequireConfirmation || cfg.BcryptCost != 6 {
		t.Errorf("config = %+v", cfg)
	}
}

func TestConfigValidation(t *testing.T) {
	secret := strings.Repeat("k", 32)

	tests := []struct {
		name string
		cfg  auth.Config
	}{
		{"short secret", auth.Config{Secret: "short"}},
		{"bad ttl", auth.Config{Secret: secret, TokenTTL: "soon"}},
		{"negative confirmation ttl", auth.Config{Secret: secret, ConfirmationTTL: "-1h"}},
		{"bcrypt cost too high", auth.Config{Secret: secret, BcryptCost: 99}},
		{"oidc without client", auth.Config{Secret: secret, OIDC: auth.OIDCConfig{IssuerURL: "https://id.example.com"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() error = nil, want error")
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := &auth.Config{Secret: "base", Issuer: "cuentos", TokenTTL: "24h"}
	base.Merge(&auth.Config{TokenTTL: "1h", RequireConfirmation: true, OIDC: auth.OIDCConfig{ClientID: "web"}})

	if base.Secret != "base" || base.TokenTTL != "1h" || !base.RequireConfirmation || base.OIDC.ClientID != "web" {
		t.Errorf("merged = %+v", base)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&auth.ValidationError{}, http.StatusBadRequest},
		{auth.ErrInvalidRequest, http.StatusBadRequest},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("%w: signature", auth.ErrInvalidToken), http.StatusUnauthorized},
		{auth.ErrTokenExpired, http.StatusUnauthorized},
		{auth.ErrTokenRevoked, http.StatusUnauthorized},
		{session.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrNotConfirmed, http.StatusForbidden},
		{auth.ErrDuplicate, http.StatusConflict},
		{auth.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: dial", repository.ErrTransient), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			if got := auth.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestCredentialsNormalize(t *testing.T) {
	c := auth.Credentials{Email: "  Ana@Example.COM\n", Password: " keep spaces "}
	c.Normalize()

	if c.Email != "ana@example.com" {
		t.Errorf("Email = %q", c.Email)
	}
	if c.Password != " keep spaces " {
		t.Errorf("Password changed to %q", c.Password)
	}
}
