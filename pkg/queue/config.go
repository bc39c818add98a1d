package queue

import (
	"fmt"
	"os"
	"strconv"
)

const (
	ProviderMemory = "memory"
	ProviderSQS    = "sqs"
)

type Config struct {
	Provider  string `toml:"provider"`
	QueueName string `toml:"queue_name"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	DevMode   bool   `toml:"dev_mode"`
	// Capacity bounds the memory provider buffer.
	Capacity int `toml:"capacity"`
	// VisibilityTimeout is in seconds.
	VisibilityTimeout int32 `toml:"visibility_timeout"`
}

type Env struct {
	Provider          string
	QueueName         string
	Region            string
	Endpoint          string
	DevMode           string
	Capacity          string
	VisibilityTimeout string
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.QueueName != "" {
		c.QueueName = overlay.QueueName
	}
	if overlay.Region != "" {
		c.Region = overlay.Region
	}
	if overlay.Endpoint != "" {
		c.Endpoint = overlay.Endpoint
	}
	if overlay.DevMode {
		c.DevMode = true
	}
	if overlay.Capacity > 0 {
		c.Capacity = overlay.Capacity
	}
	if overlay.VisibilityTimeout > 0 {
		c.VisibilityTimeout = overlay.VisibilityTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderMemory
	}
	if c.QueueName == "" {
		c.QueueName = "docpages-blob-cleanup"
	}
	if c.Region == "" {
		c.Region = "us-east-1"
	}
	if c.Capacity <= 0 {
		c.Capacity = 1024
	}
	if c.VisibilityTimeout <= 0 {
		c.VisibilityTimeout = 120
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.QueueName != "" {
		if v := os.Getenv(env.QueueName); v != "" {
			c.QueueName = v
		}
	}
	if env.Region != "" {
		if v := os.Getenv(env.Region); v != "" {
			c.Region = v
		}
	}
	if env.Endpoint != "" {
		if v := os.Getenv(env.Endpoint); v != "" {
			c.Endpoint = v
		}
	}
	if env.DevMode != "" {
		if v := os.Getenv(env.DevMode); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				c.DevMode = b
			}
		}
	}
	if env.Capacity != "" {
		if v := os.Getenv(env.Capacity); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.Capacity = n
			}
		}
	}
	if env.VisibilityTimeout != "" {
		if v := os.Getenv(env.VisibilityTimeout); v != "" {
			if n, err := strconv.ParseInt(v, 10, 32); err == nil {
				c.VisibilityTimeout = int32(n)
			}
		}
	}
}

func (c *Config) validate() error {
	switch c.Provider {
	case ProviderMemory:
	case ProviderSQS:
		if c.DevMode && c.Endpoint == "" {
			return fmt.Errorf("endpoint required for sqs dev mode")
		}
	default:
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	return nil
}
