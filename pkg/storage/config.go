package storage

import (
	"fmt"
	"os"
	"strconv"
)

// Supported object store providers.
const (
	ProviderAzure = "azure"
	ProviderMinio = "minio"
)

// Config selects an object store provider and holds its connection parameters.
//
// The azure provider authenticates with ConnectionString when set, otherwise with
// AccountURL and the ambient Azure credential chain. The minio provider talks to any
// S3-compatible endpoint with static keys. PublicBaseURL, when set, replaces the
// provider's own URL as the prefix of public object URLs (a CDN or proxy in front
// of the store).
type Config struct {
	Provider         string `toml:"provider"`
	Container        string `toml:"container"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	Endpoint         string `toml:"endpoint"`
	AccessKey        string `toml:"access_key"`
	SecretKey        string `toml:"secret_key"`
	Region           string `toml:"region"`
	UseSSL           bool   `toml:"use_ssl"`
	PublicRead       bool   `toml:"public_read"`
	PublicBaseURL    string `toml:"public_base_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider         string
	Container        string
	ConnectionString string
	AccountURL       string
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Region           string
	UseSSL           string
	PublicRead       string
	PublicBaseURL    string
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
	mergeString(&c.Provider, overlay.Provider)
	mergeString(&c.Container, overlay.Container)
	mergeString(&c.ConnectionString, overlay.ConnectionString)
	mergeString(&c.AccountURL, overlay.AccountURL)
	mergeString(&c.Endpoint, overlay.Endpoint)
	mergeString(&c.AccessKey, overlay.AccessKey)
	mergeString(&c.SecretKey, overlay.SecretKey)
	mergeString(&c.Region, overlay.Region)
	mergeString(&c.PublicBaseURL, overlay.PublicBaseURL)
	if overlay.UseSSL {
		c.UseSSL = true
	}
	if overlay.PublicRead {
		c.PublicRead = true
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderAzure
	}
	if c.Container == "" {
		c.Container = "cuentos"
	}
}

func (c *Config) loadEnv(env *Env) {
	envString(&c.Provider, env.Provider)
	envString(&c.Container, env.Container)
	envString(&c.ConnectionString, env.ConnectionString)
	envString(&c.AccountURL, env.AccountURL)
	envString(&c.Endpoint, env.Endpoint)
	envString(&c.AccessKey, env.AccessKey)
	envString(&c.SecretKey, env.SecretKey)
	envString(&c.Region, env.Region)
	envString(&c.PublicBaseURL, env.PublicBaseURL)
	envBool(&c.UseSSL, env.UseSSL)
	envBool(&c.PublicRead, env.PublicRead)
}

func (c *Config) validate() error {
	if c.Container == "" {
		return fmt.Errorf("container required")
	}

	switch c.Provider {
	case ProviderAzure:
		if c.ConnectionString == "" && c.AccountURL == "" {
			return fmt.Errorf("connection_string or account_url required for azure provider")
		}
	case ProviderMinio:
		if c.Endpoint == "" {
			return fmt.Errorf("endpoint required for minio provider")
		}
		if c.AccessKey == "" || c.SecretKey == "" {
			return fmt.Errorf("access_key and secret_key required for minio provider")
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}

	return nil
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envString(dst *string, key string) {
	if key == "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envBool(dst *bool, key string) {
	if key == "" {
		return
	}
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
