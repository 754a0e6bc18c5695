package handler

import (
	"context"
	"log/slog"
	"strings"
	"time"

	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	"backofficeWs/internal/modules/realtime/application/port"
	"backofficeWs/internal/modules/realtime/application/usecase"
	"backofficeWs/internal/modules/realtime/domain"
)

// CollectionEventHandler forwards upstream change events of one collection to the
// websocket subscribers of <collection>.<action> and reloads every open view of it.
type CollectionEventHandler struct {
	collection     string
	allowedActions map[string]struct{}
	broadcastUC    *usecase.BroadcastUseCase
	registry       *collectionusecase.ViewRegistry
	detail         *collectionusecase.DetailLookup
}

func NewCollectionEventHandler(collection string, allowedActions []string, broadcastUC *usecase.BroadcastUseCase, registry *collectionusecase.ViewRegistry, detail *collectionusecase.DetailLookup) *CollectionEventHandler {
	actionSet := make(map[string]struct{}, len(allowedActions))
	for _, a := range allowedActions {
		if v := strings.TrimSpace(strings.ToLower(a)); v != "" {
			actionSet[v] = struct{}{}
		}
	}
	return &CollectionEventHandler{
		collection:     strings.TrimSpace(collection),
		allowedActions: actionSet,
		broadcastUC:    broadcastUC,
		registry:       registry,
		detail:         detail,
	}
}

func (h *CollectionEventHandler) Topic() string { return h.collection }

func (h *CollectionEventHandler) Handle(ctx context.Context, msg *domain.Message) error {
	action := strings.ToLower(strings.TrimSpace(msg.Action))
	if len(h.allowedActions) > 0 {
		if _, ok := h.allowedActions[action]; !ok {
			slog.Debug("collection event ignored", slog.String("collection", h.collection), slog.String("action", msg.Action))
			return nil
		}
	}
	msg.Entity = h.collection
	msg.Action = action
	msg.Topic = domain.CustomTopic(h.collection, action)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}

	if h.detail != nil {
		h.detail.Invalidate(h.collection)
	}
	h.broadcastUC.Execute(ctx, msg)

	if h.registry == nil {
		return nil
	}
	reloaded := h.registry.ReloadCollection(ctx, h.collection)
	slog.Info("collection event applied", slog.String("collection", h.collection), slog.String("action", action), slog.String("resourceId", msg.ResourceID), slog.Int("views", reloaded))
	return nil
}

var _ port.TopicHandler = (*CollectionEventHandler)(nil)
