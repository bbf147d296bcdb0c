package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"task-kpi-system.com/task-kpi-system/internal/constants"
	"task-kpi-system.com/task-kpi-system/internal/metrics"
	model "task-kpi-system.com/task-kpi-system/internal/models"
	"task-kpi-system.com/task-kpi-system/internal/pubsub"
)

var ErrHubClosed = errors.New("notification hub is closed")

const defaultBufferSize = 64

// Hub is the registry of live subscriber connections. It is created on
// startup and closed on shutdown, which ends every open subscription.
type Hub struct {
	transport  pubsub.Transport
	metrics    *metrics.Metrics
	logger     *slog.Logger
	bufferSize int

	mu     sync.Mutex
	subs   map[string]*Subscription
	closed bool
}

// Subscription is one connected observer. Events is closed when the
// subscription ends, either because the caller closed it, the hub shut
// down, or the observer fell too far behind.
type Subscription struct {
	ID       string
	Channels []string

	events chan pubsub.Message
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func NewHub(transport pubsub.Transport, m *metrics.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		transport:  transport,
		metrics:    m,
		logger:     logger,
		bufferSize: defaultBufferSize,
		subs:       make(map[string]*Subscription),
	}
}

// SubscriptionChannels returns the channels an identity listens on: its
// own user channel, plus the admin channel for administrators.
func SubscriptionChannels(identity model.Identity) []string {
	channels := []string{constants.UserChannel(identity.UserID)}
	if identity.IsAdmin() {
		channels = append(channels, constants.AdminChannel)
	}
	return channels
}

// Subscribe registers identity's channels with the transport and returns
// once they are live, so any event published after it returns is delivered.
func (h *Hub) Subscribe(ctx context.Context, identity model.Identity) (*Subscription, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub := &Subscription{
		ID:       uuid.NewString(),
		Channels: SubscriptionChannels(identity),
		events:   make(chan pubsub.Message, h.bufferSize),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	h.subs[sub.ID] = sub
	h.mu.Unlock()

	h.metrics.SubscriberConnected()

	ready := make(chan struct{})
	var once sync.Once
	go h.run(subCtx, sub, func() { once.Do(func() { close(ready) }) })

	select {
	case <-ready:
	case <-sub.done:
		if sub.err != nil {
			return nil, fmt.Errorf("subscribe %v: %w", sub.Channels, sub.err)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, ErrHubClosed
	}

	h.logger.Debug("subscriber connected", "subscription_id", sub.ID, "user_id", identity.UserID)
	return sub, nil
}

func (h *Hub) run(ctx context.Context, sub *Subscription, ready func()) {
	defer func() {
		h.mu.Lock()
		delete(h.subs, sub.ID)
		h.mu.Unlock()

		close(sub.events)
		close(sub.done)
		h.metrics.SubscriberDisconnected()
	}()

	sub.err = h.transport.Subscribe(ctx, sub.Channels, func(msg pubsub.Message) {
		select {
		case sub.events <- msg:
		default:
			h.logger.Warn("subscriber too slow, dropping connection", "subscription_id", sub.ID)
			sub.cancel()
		}
	}, ready)
	if sub.err != nil {
		h.logger.Error("subscription ended with error", "subscription_id", sub.ID, "error", sub.err)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	subs := make([]*Subscription, 0, len(h.subs))
	for _, s := range h.subs {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		s.Close()
	}
}

func (s *Subscription) Events() <-chan pubsub.Message {
	return s.events
}

func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Close ends the subscription and waits for its delivery loop to stop.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}
