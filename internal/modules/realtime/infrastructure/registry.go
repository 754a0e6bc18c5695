package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"backofficeWs/internal/modules/realtime/application/port"
	"backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/shared/normalization"
)

// HandlerRegistry routes change events to the handler of their collection.
type HandlerRegistry struct {
	mu       sync.RWMutex
	handlers map[string]port.TopicHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{handlers: make(map[string]port.TopicHandler)}
}

func (r *HandlerRegistry) Register(h port.TopicHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[normalization.NormalizeCollection(h.Topic())] = h
}

// Dispatch hands msg to the handler registered for its entity. Events of collections
// without a handler are dropped.
func (r *HandlerRegistry) Dispatch(ctx context.Context, msg *domain.Message) error {
	if msg == nil {
		return nil
	}
	r.mu.RLock()
	handler, ok := r.handlers[normalization.NormalizeCollection(msg.Entity)]
	r.mu.RUnlock()
	if !ok {
		slog.Debug("change event without handler", slog.String("entity", msg.Entity), slog.String("action", msg.Action))
		return nil
	}
	return handler.Handle(ctx, msg)
}

// Has reports whether a handler is registered for collection.
func (r *HandlerRegistry) Has(collection string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[normalization.NormalizeCollection(collection)]
	return ok
}
