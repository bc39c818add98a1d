package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrQueueFull = errors.New("queue: full")

type memory struct {
	mu       sync.Mutex
	ready    chan *Message
	inflight map[string]*time.Timer
	poll     time.Duration
}

// NewMemory returns an in-process queue for single-instance deployments
// and tests. Unacknowledged messages are redelivered after their
// visibility timeout.
func NewMemory(capacity int) Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &memory{
		ready:    make(chan *Message, capacity),
		inflight: make(map[string]*time.Timer),
		poll:     20 * time.Second,
	}
}

func (m *memory) Send(ctx context.Context, body string) error {
	msg := &Message{ID: uuid.NewString(), Body: body}
	select {
	case m.ready <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (m *memory) Receive(ctx context.Context, visibilityTimeout int32) (*Message, error) {
	wait := time.NewTimer(m.poll)
	defer wait.Stop()

	select {
	case msg := <-m.ready:
		m.track(msg, time.Duration(visibilityTimeout)*time.Second)
		return msg, nil
	case <-wait.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (m *memory) Delete(ctx context.Context, msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.inflight[msg.ID]; ok {
		t.Stop()
		delete(m.inflight, msg.ID)
	}
	return nil
}

func (m *memory) track(msg *Message, visibility time.Duration) {
	if visibility <= 0 {
		visibility = 30 * time.Second
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.inflight[msg.ID] = time.AfterFunc(visibility, func() {
		m.mu.Lock()
		_, pending := m.inflight[msg.ID]
		delete(m.inflight, msg.ID)
		m.mu.Unlock()

		if pending {
			select {
			case m.ready <- msg:
			default:
			}
		}
	})
}
