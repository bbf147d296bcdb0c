package pubsub

import "context"

type Message struct {
	Channel string
	Payload []byte
}

// Transport carries notifications between the process that commits a task
// mutation and every process holding live subscriber connections.
type Transport interface {
	Publish(ctx context.Context, channel string, payload []byte) error

	// Subscribe delivers messages published on any of channels to handler
	// until ctx is cancelled. It blocks for the lifetime of the subscription.
	// ready, when not nil, is called once every channel is registered; a
	// message published after that point reaches handler.
	Subscribe(ctx context.Context, channels []string, handler func(Message), ready func()) error

	Close() error
}
