package auth

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const minSecretLength = 32

// Config holds token signing and account policy settings.
type Config struct {
	Secret              string     `toml:"secret"`
	Issuer              string     `toml:"issuer"`
	TokenTTL            string     `toml:"token_ttl"`
	ConfirmationTTL     string     `toml:"confirmation_ttl"`
	RequireConfirmation bool       `toml:"require_confirmation"`
	LogConfirmations    bool       `toml:"log_confirmations"`
	BcryptCost          int        `toml:"bcrypt_cost"`
	OIDC                OIDCConfig `toml:"oidc"`
}

// OIDCConfig identifies an external OpenID Connect issuer whose ID tokens are
// accepted as bearer tokens. Disabled when IssuerURL is empty.
type OIDCConfig struct {
	IssuerURL string `toml:"issuer_url"`
	ClientID  string `toml:"client_id"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Secret              string
	Issuer              string
	TokenTTL            string
	ConfirmationTTL     string
	RequireConfirmation string
	LogConfirmations    string
	BcryptCost          string
	OIDCIssuerURL       string
	OIDCClientID        string
}

// TokenTTLDuration returns TokenTTL as a time.Duration.
func (c *Config) TokenTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TokenTTL)
	return d
}

// ConfirmationTTLDuration returns ConfirmationTTL as a time.Duration.
func (c *Config) ConfirmationTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConfirmationTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.TokenTTL != "" {
		c.TokenTTL = overlay.TokenTTL
	}
	if overlay.ConfirmationTTL != "" {
		c.ConfirmationTTL = overlay.ConfirmationTTL
	}
	if overlay.RequireConfirmation {
		c.RequireConfirmation = true
	}
	if overlay.LogConfirmations {
		c.LogConfirmations = true
	}
	if overlay.BcryptCost != 0 {
		c.BcryptCost = overlay.BcryptCost
	}
	if overlay.OIDC.IssuerURL != "" {
		c.OIDC.IssuerURL = overlay.OIDC.IssuerURL
	}
	if overlay.OIDC.ClientID != "" {
		c.OIDC.ClientID = overlay.OIDC.ClientID
	}
}

func (c *Config) loadDefaults() {
	if c.Issuer == "" {
		c.Issuer = "cuentos"
	}
	if c.TokenTTL == "" {
		c.TokenTTL = "24h"
	}
	if c.ConfirmationTTL == "" {
		c.ConfirmationTTL = "48h"
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
}

func (c *Config) loadEnv(env *Env) {
	fields := []struct {
		key    string
		target *string
	}{
		{env.Secret, &c.Secret},
		{env.Issuer, &c.Issuer},
		{env.TokenTTL, &c.TokenTTL},
		{env.ConfirmationTTL, &c.ConfirmationTTL},
		{env.OIDCIssuerURL, &c.OIDC.IssuerURL},
		{env.OIDCClientID, &c.OIDC.ClientID},
	}
	for _, s := range fields {
		if v := lookup(s.key); v != "" {
			*s.target = v
		}
	}

	if v := lookup(env.RequireConfirmation); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.RequireConfirmation = b
		}
	}
	if v := lookup(env.LogConfirmations); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.LogConfirmations = b
		}
	}
	if v := lookup(env.BcryptCost); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BcryptCost = n
		}
	}
}

func (c *Config) validate() error {
	if len(c.Secret) < minSecretLength {
		return fmt.Errorf("secret must be at least %d bytes", minSecretLength)
	}
	if d, err := time.ParseDuration(c.TokenTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid token_ttl: %q", c.TokenTTL)
	}
	if d, err := time.ParseDuration(c.ConfirmationTTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid confirmation_ttl: %q", c.ConfirmationTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.OIDC.IssuerURL != "" && c.OIDC.ClientID == "" {
		return fmt.Errorf("oidc client_id required when issuer_url is set")
	}
	return nil
}

func lookup(key string) string {
	if key == "" {
		return ""
	}
	return os.Getenv(key)
}
