// Package config loads the service configuration: a base config.toml, an
// optional config.<env>.toml overlay, then CUENTOS_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/guarayo/cuentos/internal/auth"
	"github.com/guarayo/cuentos/internal/media"
	"github.com/guarayo/cuentos/pkg/cache"
	"github.com/guarayo/cuentos/pkg/database"
	"github.com/guarayo/cuentos/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCuentosEnv             = "CUENTOS_ENV"
	EnvCuentosShutdownTimeout = "CUENTOS_SHUTDOWN_TIMEOUT"
	EnvCuentosVersion         = "CUENTOS_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "CUENTOS_DB_DSN",
	Host:            "CUENTOS_DB_HOST",
	Port:            "CUENTOS_DB_PORT",
	Name:            "CUENTOS_DB_NAME",
	User:            "CUENTOS_DB_USER",
	Password:        "CUENTOS_DB_PASSWORD",
	SSLMode:         "CUENTOS_DB_SSL_MODE",
	MaxOpenConns:    "CUENTOS_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CUENTOS_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CUENTOS_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CUENTOS_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "CUENTOS_STORAGE_PROVIDER",
	Container:        "CUENTOS_STORAGE_CONTAINER",
	ConnectionString: "CUENTOS_STORAGE_CONNECTION_STRING",
	AccountURL:       "CUENTOS_STORAGE_ACCOUNT_URL",
	Endpoint:         "CUENTOS_STORAGE_ENDPOINT",
	AccessKey:        "CUENTOS_STORAGE_ACCESS_KEY",
	SecretKey:        "CUENTOS_STORAGE_SECRET_KEY",
	Region:           "CUENTOS_STORAGE_REGION",
	UseSSL:           "CUENTOS_STORAGE_USE_SSL",
	PublicRead:       "CUENTOS_STORAGE_PUBLIC_READ",
	PublicBaseURL:    "CUENTOS_STORAGE_PUBLIC_BASE_URL",
}

var cacheEnv = &cache.Env{
	Enabled:     "CUENTOS_CACHE_ENABLED",
	URL:         "CUENTOS_CACHE_URL",
	Addr:        "CUENTOS_CACHE_ADDR",
	Password:    "CUENTOS_CACHE_PASSWORD",
	DB:          "CUENTOS_CACHE_DB",
	PoolSize:    "CUENTOS_CACHE_POOL_SIZE",
	DialTimeout: "CUENTOS_CACHE_DIAL_TIMEOUT",
}

var authEnv = &auth.Env{
	Secret:              "CUENTOS_AUTH_SECRET",
	Issuer:              "CUENTOS_AUTH_ISSUER",
	TokenTTL:            "CUENTOS_AUTH_TOKEN_TTL",
	ConfirmationTTL:     "CUENTOS_AUTH_CONFIRMATION_TTL",
	RequireConfirmation: "CUENTOS_AUTH_REQUIRE_CONFIRMATION",
	LogConfirmations:    "CUENTOS_AUTH_LOG_CONFIRMATIONS",
	BcryptCost:          "CUENTOS_AUTH_BCRYPT_COST",
	OIDCIssuerURL:       "CUENTOS_AUTH_OIDC_ISSUER_URL",
	OIDCClientID:        "CUENTOS_AUTH_OIDC_CLIENT_ID",
}

var mediaEnv = &media.Env{
	MaxImageSize: "CUENTOS_MEDIA_MAX_IMAGE_SIZE",
	MaxAudioSize: "CUENTOS_MEDIA_MAX_AUDIO_SIZE",
	MaxVideoSize: "CUENTOS_MEDIA_MAX_VIDEO_SIZE",
	CacheControl: "CUENTOS_MEDIA_CACHE_CONTROL",
}

// Config is the root configuration for the Cuentos service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Logging         LoggingConfig   `toml:"logging"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Auth            auth.Config     `toml:"auth"`
	Media           media.Config    `toml:"media"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the CUENTOS_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCuentosEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with config files resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{}

	base := dir + string(os.PathSeparator) + BaseConfigFile
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Auth.Merge(&overlay.Auth)
	c.Media.Merge(&overlay.Media)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Media.Finalize(mediaEnv); err != nil {
		return fmt.Errorf("media: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvCuentosShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCuentosVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(dir string) string {
	if env := os.Getenv(EnvCuentosEnv); env != "" {
		path := dir + string(os.PathSeparator) + fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
