package openapi

import "os"

// Config holds the metadata published in the info object of the API description.
type Config struct {
	Title        string `toml:"title"`
	Description  string `toml:"description"`
	ContactName  string `toml:"contact_name"`
	ContactEmail string `toml:"contact_email"`
	License      string `toml:"license"`
}

// ConfigEnv maps config fields to environment variable names for override injection.
type ConfigEnv struct {
	Title        string
	Description  string
	ContactName  string
	ContactEmail string
	License      string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for field, value := range c.pairs(overlay) {
		if value != "" {
			*field = value
		}
	}
}

// Apply writes the configured metadata into spec.Info.
func (c *Config) Apply(spec *Spec) {
	spec.Info.Title = c.Title
	spec.Info.Description = c.Description

	if c.ContactName != "" || c.ContactEmail != "" {
		spec.Info.Contact = &Contact{Name: c.ContactName, Email: c.ContactEmail}
	}
	if c.License != "" {
		spec.Info.License = &License{Name: c.License, Identifier: c.License}
	}
}

// pairs lines up each field of c with the matching field of o.
func (c *Config) pairs(o *Config) map[*string]string {
	return map[*string]string{
		&c.Title:        o.Title,
		&c.Description:  o.Description,
		&c.ContactName:  o.ContactName,
		&c.ContactEmail: o.ContactEmail,
		&c.License:      o.License,
	}
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Cuentos de Guarayo API"
	}
	if c.Description == "" {
		c.Description = "Publish, browse, and search community stories with image, audio, and video attachments."
	}
	if c.License == "" {
		c.License = "CC-BY-4.0"
	}
}

func (c *Config) loadEnv(env *ConfigEnv) {
	vars := map[*string]string{
		&c.Title:        env.Title,
		&c.Description:  env.Description,
		&c.ContactName:  env.ContactName,
		&c.ContactEmail: env.ContactEmail,
		&c.License:      env.License,
	}
	for field, name := range vars {
		if name == "" {
			continue
		}
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}
}
