package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvSessionsIdleTTL         = "SESSIONS_IDLE_TTL"
	EnvSessionsDetectConflicts = "SESSIONS_DETECT_CONFLICTS"
	EnvSessionsMaxOpen         = "SESSIONS_MAX_OPEN"
)

type SessionsConfig struct {
	// IdleTTL evicts sessions not touched for this long. Default: 30m
	IdleTTL string `toml:"idle_ttl"`
	// DetectConflicts rejects a save when the document changed after the
	// session opened. Off means last write wins.
	DetectConflicts bool `toml:"detect_conflicts"`
	MaxOpen         int  `toml:"max_open"`
}

func (c *SessionsConfig) IdleTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTTL)
	return d
}

func (c *SessionsConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *SessionsConfig) Merge(overlay *SessionsConfig) {
	if overlay.IdleTTL != "" {
		c.IdleTTL = overlay.IdleTTL
	}
	if overlay.DetectConflicts {
		c.DetectConflicts = true
	}
	if overlay.MaxOpen > 0 {
		c.MaxOpen = overlay.MaxOpen
	}
}

func (c *SessionsConfig) loadDefaults() {
	if c.IdleTTL == "" {
		c.IdleTTL = "30m"
	}
	if c.MaxOpen <= 0 {
		c.MaxOpen = 256
	}
}

func (c *SessionsConfig) loadEnv() {
	if v := os.Getenv(EnvSessionsIdleTTL); v != "" {
		c.IdleTTL = v
	}
	if v := os.Getenv(EnvSessionsDetectConflicts); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.DetectConflicts = b
		}
	}
	if v := os.Getenv(EnvSessionsMaxOpen); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxOpen = n
		}
	}
}

func (c *SessionsConfig) validate() error {
	d, err := time.ParseDuration(c.IdleTTL)
	if err != nil {
		return fmt.Errorf("invalid idle_ttl: %w", err)
	}
	if d < time.Minute {
		return fmt.Errorf("idle_ttl must be at least 1m")
	}
	return nil
}
