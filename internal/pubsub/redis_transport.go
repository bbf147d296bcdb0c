package pubsub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/rueidis"
)

type RedisTransport struct {
	client rueidis.Client
}

func NewRedisTransport(client rueidis.Client) *RedisTransport {
	return &RedisTransport{client: client}
}

func (r *RedisTransport) Publish(ctx context.Context, channel string, payload []byte) error {
	cmd := r.client.B().Publish().Channel(channel).Message(rueidis.BinaryString(payload)).Build()
	return r.client.Do(ctx, cmd).Error()
}

// Subscribe holds a dedicated connection for the subscription. ready fires
// once Redis has confirmed every channel.
func (r *RedisTransport) Subscribe(ctx context.Context, channels []string, handler func(Message), ready func()) error {
	dc, release := r.client.Dedicate()
	defer release()

	confirm := newConfirmations(channels, ready)
	wait := dc.SetPubSubHooks(rueidis.PubSubHooks{
		OnMessage: func(msg rueidis.PubSubMessage) {
			handler(Message{Channel: msg.Channel, Payload: []byte(msg.Message)})
		},
		OnSubscription: func(s rueidis.PubSubSubscription) {
			if s.Kind == "subscribe" {
				confirm.done(s.Channel)
			}
		},
	})

	if err := dc.Do(ctx, dc.B().Subscribe().Channel(channels...).Build()).Error(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("subscribe %v: %w", channels, err)
	}

	select {
	case <-ctx.Done():
		return nil
	case err := <-wait:
		if err == nil || errors.Is(err, rueidis.ErrClosing) {
			return nil
		}
		return err
	}
}

func (r *RedisTransport) Close() error {
	r.client.Close()
	return nil
}

// confirmations calls ready when the last pending channel is confirmed.
type confirmations struct {
	mu      sync.Mutex
	pending map[string]struct{}
	ready   func()
}

func newConfirmations(channels []string, ready func()) *confirmations {
	c := &confirmations{pending: make(map[string]struct{}, len(channels)), ready: ready}
	for _, ch := range channels {
		c.pending[ch] = struct{}{}
	}
	return c
}

func (c *confirmations) done(channel string) {
	c.mu.Lock()
	if _, ok := c.pending[channel]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.pending, channel)
	fire := len(c.pending) == 0 && c.ready != nil
	c.mu.Unlock()

	if fire {
		c.ready()
	}
}
