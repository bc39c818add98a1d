// Package queue carries background work messages between producers and
// consumers.
package queue

import (
	"context"
	"fmt"
	"log/slog"
)

// Queue is an at-least-once message queue. Receive returns (nil, nil)
// when a poll completes without a message. A received message must be
// deleted after processing or it becomes visible again.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, visibilityTimeout int32) (*Message, error)
	Delete(ctx context.Context, msg *Message) error
}

type Message struct {
	ID   string
	Body string
}

// New constructs the provider selected by cfg.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Queue, error) {
	switch cfg.Provider {
	case ProviderMemory:
		return NewMemory(cfg.Capacity), nil
	case ProviderSQS:
		return NewSQS(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unsupported queue provider: %s", cfg.Provider)
	}
}
