package pubsub

import (
	"context"
	"sync"
)

// MemoryTransport delivers messages within a single process. Publish calls
// handlers synchronously, so a subscriber sees messages in publish order.
type MemoryTransport struct {
	mu       sync.RWMutex
	channels map[string]map[*memorySubscriber]struct{}
	closed   chan struct{}
	once     sync.Once
}

type memorySubscriber struct {
	handler func(Message)
}

func NewMemoryTransport() *MemoryTransport {
	return &MemoryTransport{
		channels: make(map[string]map[*memorySubscriber]struct{}),
		closed:   make(chan struct{}),
	}
}

func (m *MemoryTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for sub := range m.channels[channel] {
		sub.handler(Message{Channel: channel, Payload: payload})
	}
	return nil
}

func (m *MemoryTransport) Subscribe(ctx context.Context, channels []string, handler func(Message), ready func()) error {
	sub := &memorySubscriber{handler: handler}

	m.mu.Lock()
	for _, ch := range channels {
		subs, ok := m.channels[ch]
		if !ok {
			subs = make(map[*memorySubscriber]struct{})
			m.channels[ch] = subs
		}
		subs[sub] = struct{}{}
	}
	m.mu.Unlock()

	if ready != nil {
		ready()
	}

	select {
	case <-ctx.Done():
	case <-m.closed:
	}

	m.mu.Lock()
	for _, ch := range channels {
		delete(m.channels[ch], sub)
		if len(m.channels[ch]) == 0 {
			delete(m.channels, ch)
		}
	}
	m.mu.Unlock()

	return nil
}

// Subscribers returns the number of live subscriptions on channel.
func (m *MemoryTransport) Subscribers(channel string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.channels[channel])
}

func (m *MemoryTransport) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}
