package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/JaimeStill/docpages/pkg/cache"
	"github.com/JaimeStill/docpages/pkg/logging"
)

func TestNoop(t *testing.T) {
	c := cache.New(&cache.Config{}, logging.Discard())
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	data, ok, err := c.Get(ctx, "k")
	if err != nil || ok || data != nil {
		t.Errorf("Get() = %v, %v, %v; want miss", data, ok, err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}

func TestConfig_Finalize(t *testing.T) {
	t.Setenv("TEST_CACHE_ENABLED", "true")
	t.Setenv("TEST_CACHE_TTL", "15m")

	cfg := &cache.Config{}
	env := &cache.Env{Enabled: "TEST_CACHE_ENABLED", TTL: "TEST_CACHE_TTL"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	if !cfg.Enabled {
		t.Error("Enabled = false, want true")
	}
	if cfg.Addr != "localhost:6379" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.TTLDuration() != 15*time.Minute {
		t.Errorf("TTLDuration() = %v", cfg.TTLDuration())
	}
}

func TestConfig_InvalidTTL(t *testing.T) {
	tests := []string{"soon", "-1m", "0s"}
	for _, ttl := range tests {
		t.Run(ttl, func(t *testing.T) {
			cfg := &cache.Config{TTL: ttl}
			if err := cfg.Finalize(nil); err == nil {
				t.Errorf("Finalize() with ttl %q error = nil", ttl)
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := &cache.Config{Addr: "a:1", TTL: "1h"}
	cfg.Merge(&cache.Config{Enabled: true, Addr: "b:2"})

	if !cfg.Enabled || cfg.Addr != "b:2" || cfg.TTL != "1h" {
		t.Errorf("Merge() = %+v", cfg)
	}
}
