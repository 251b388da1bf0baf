package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/anonto42/gamematch/backend/pkg/pubsub"
)

// MockPublisher calls PublishFunc and records every message it receives.
type MockPublisher struct {
	PublishFunc func(context.Context, *pubsub.Message) error

	mu       sync.Mutex
	messages []*pubsub.Message
}

func (m *MockPublisher) Publish(ctx context.Context, msg *pubsub.Message) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, msg)
	}
	return nil
}

func (m *MockPublisher) Close() error { return nil }

// Messages returns the published messages in order.
func (m *MockPublisher) Messages() []*pubsub.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*pubsub.Message(nil), m.messages...)
}

// ErrTransportDown is returned by failing mock transports.
var ErrTransportDown = errors.New("transport down")
