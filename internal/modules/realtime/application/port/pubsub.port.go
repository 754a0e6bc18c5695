package port

import (
	"context"

	"backofficeWs/internal/modules/realtime/domain"
)

// PubSubPort consumes external change events (Kafka).
type PubSubPort interface {
	Consume(ctx context.Context, handler func(*domain.Message) error) error
}

// Broadcaster fans a message out to the websocket clients subscribed to its topic.
type Broadcaster interface {
	Broadcast(ctx context.Context, msg *domain.Message)
}

// TopicHandler handles the change events of one collection.
type TopicHandler interface {
	Topic() string
	Handle(ctx context.Context, msg *domain.Message) error
}

// MessageSink delivers messages to one connected client.
type MessageSink interface {
	SendDomainMessage(msg *domain.Message)
}

// MutationLimiter bounds how often a client may mutate records.
type MutationLimiter interface {
	Allow(key string) bool
}
