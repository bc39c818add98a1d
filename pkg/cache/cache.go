// Package cache provides a byte cache used in front of blob reads.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/JaimeStill/docpages/pkg/lifecycle"
)

// System caches opaque values by key. A miss is reported through the
// boolean result, never as an error.
type System interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, keys ...string) error
	Start(lc *lifecycle.Coordinator) error
}

// New returns a redis-backed cache when enabled and a noop cache otherwise.
func New(cfg *Config, logger *slog.Logger) System {
	if !cfg.Enabled {
		return Noop()
	}
	return newRedis(cfg, logger)
}

type noop struct{}

// Noop never stores anything; every Get is a miss.
func Noop() System { return noop{} }

func (noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noop) Set(context.Context, string, []byte) error         { return nil }
func (noop) Delete(context.Context, ...string) error           { return nil }
func (noop) Start(*lifecycle.Coordinator) error                { return nil }

func ttlOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Hour
	}
	return d
}
