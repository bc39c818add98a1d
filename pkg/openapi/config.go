package openapi

import "os"

type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

type Env struct {
	Title       string
	Description string
}

func (c *Config) Finalize(env *Env) error {
	if c.Title == "" {
		c.Title = "DocPages API"
	}
	if c.Description == "" {
		c.Description = "Multi-page document capture, editing, composition, and export."
	}
	if env != nil {
		if v := os.Getenv(env.Title); env.Title != "" && v != "" {
			c.Title = v
		}
		if v := os.Getenv(env.Description); env.Description != "" && v != "" {
			c.Description = v
		}
	}
	return nil
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
}
