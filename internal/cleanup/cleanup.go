// Package cleanup deletes blobs that no record references: pages of
// deleted documents and uploads abandoned by failed saves or compositions.
package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/docpages/internal/blobs"
	"github.com/JaimeStill/docpages/pkg/lifecycle"
	"github.com/JaimeStill/docpages/pkg/queue"
)

// Message is the queued unit of work.
type Message struct {
	Reason   string   `json:"reason"`
	Locators []string `json:"locators"`
}

type System interface {
	// Enqueue schedules locators for deletion. Empty locators are skipped.
	Enqueue(ctx context.Context, reason string, locators ...string) error
	// Start launches the consumer loop; it stops when the lifecycle context
	// is cancelled.
	Start(lc *lifecycle.Coordinator) error
}

type sweeper struct {
	queue             queue.Queue
	blobs             blobs.Store
	visibilityTimeout int32
	logger            *slog.Logger
}

func New(q queue.Queue, store blobs.Store, visibilityTimeout int32, logger *slog.Logger) System {
	return &sweeper{
		queue:             q,
		blobs:             store,
		visibilityTimeout: visibilityTimeout,
		logger:            logger.With("system", "cleanup"),
	}
}

func (s *sweeper) Enqueue(ctx context.Context, reason string, locators ...string) error {
	keep := make([]string, 0, len(locators))
	for _, l := range locators {
		if l != "" {
			keep = append(keep, l)
		}
	}
	if len(keep) == 0 {
		return nil
	}

	body, err := json.Marshal(Message{Reason: reason, Locators: keep})
	if err != nil {
		return fmt.Errorf("marshal cleanup message: %w", err)
	}

	if err := s.queue.Send(ctx, string(body)); err != nil {
		return fmt.Errorf("enqueue cleanup: %w", err)
	}

	s.logger.Debug("cleanup enqueued", "reason", reason, "count", len(keep))
	return nil
}

func (s *sweeper) Start(lc *lifecycle.Coordinator) error {
	s.logger.Info("starting cleanup worker")

	lc.OnShutdown(func() {
		s.run(lc.Context())
		s.logger.Info("cleanup worker stopped")
	})
	return nil
}

func (s *sweeper) run(ctx context.Context) {
	for {
		msg, err := s.queue.Receive(ctx, s.visibilityTimeout)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			s.logger.Error("cleanup receive failed", "error", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}

		if msg == nil {
			continue
		}

		s.process(ctx, msg)
	}
}

// process handles a single message. The message is acknowledged when every
// locator is gone; otherwise it is left for redelivery.
func (s *sweeper) process(ctx context.Context, msg *queue.Message) {
	var m Message
	if err := json.Unmarshal([]byte(msg.Body), &m); err != nil {
		s.logger.Error("discarding malformed cleanup message", "error", err)
		s.ack(msg)
		return
	}

	opCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Duration(max(s.visibilityTimeout-1, 1))*time.Second)
	defer cancel()

	failed := 0
	for _, locator := range m.Locators {
		if err := s.blobs.Delete(opCtx, locator); err != nil && !errors.Is(err, blobs.ErrNotFound) {
			s.logger.Warn("blob delete failed", "locator", locator, "error", err)
			failed++
		}
	}

	if failed > 0 {
		s.logger.Warn("cleanup incomplete, awaiting redelivery", "reason", m.Reason, "failed", failed)
		return
	}

	s.ack(msg)
	s.logger.Info("blobs cleaned up", "reason", m.Reason, "count", len(m.Locators))
}

func (s *sweeper) ack(msg *queue.Message) {
	if err := s.queue.Delete(context.Background(), msg); err != nil {
		s.logger.Error("cleanup ack failed", "error", err)
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
