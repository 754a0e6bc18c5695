package transport

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/modules/realtime/infrastructure"
)

// EventResponse acknowledges a change event posted over REST.
type EventResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Topic   string `json:"topic"`
}

// NewEventsHTTPHandler accepts upstream change events over REST for deployments without
// Kafka. Events go through the same handlers as Kafka records.
func NewEventsHTTPHandler(registry *infrastructure.HandlerRegistry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req domain.EventCommand
		if err := c.Bind(&req); err != nil {
			slog.Warn("events http: invalid request body", slog.Any("error", err))
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		collection := normalizeCollection(req.Collection)
		action := strings.ToLower(strings.TrimSpace(req.Action))
		if collection == "" || action == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "collection and action are required")
		}
		if !registry.Has(collection) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown collection")
		}

		msg := &domain.Message{
			Topic:      domain.CustomTopic(collection, action),
			Entity:     collection,
			Action:     action,
			ResourceID: strings.TrimSpace(req.ResourceID),
			Metadata:   req.Metadata,
			Data:       req.Data,
			Timestamp:  time.Now().UTC(),
		}
		if err := registry.Dispatch(c.Request().Context(), msg); err != nil {
			slog.Warn("events http: dispatch failed", slog.String("collection", collection), slog.String("action", action), slog.Any("error", err))
			return respondError(c, err)
		}

		slog.Info("events http: event applied", slog.String("collection", collection), slog.String("action", action), slog.String("resourceId", msg.ResourceID))
		return c.JSON(http.StatusAccepted, EventResponse{
			Success: true,
			Message: "Event applied",
			Topic:   msg.Topic,
		})
	}
}
