package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	domain "backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/modules/realtime/infrastructure"
	"backofficeWs/internal/shared/auth"
)

// NewEventsWebsocketHandler exposes /ws/admin/events: an authenticated stream of every
// change event of every collection.
func NewEventsWebsocketHandler(hub *infrastructure.Hub, validator auth.TokenValidator, sendBuffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		token := auth.ResolveToken("", c.Request(), "token")
		claims, err := validator.Validate(token)
		if err != nil {
			info := errorMapper.Map(err)
			slog.Warn("events ws auth failed", slog.String("ip", peerIP), slog.Any("error", err))
			if info.Status == http.StatusBadRequest || info.Status >= http.StatusInternalServerError {
				info.Status = http.StatusUnauthorized
			}
			return echo.NewHTTPError(info.Status, "invalid or missing token")
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("events ws upgrade failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		userID := claims.Subject
		sessionID := "events-" + uuid.NewString()
		client := infrastructure.NewClient(hub, conn, userID, sessionID, "", token, sendBuffer, nil)
		hub.AttachClientToAll(client)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(domain.NewSystemMessage(domain.ActionConnected, map[string]any{
			"mode":   "events",
			"topics": []string{"*"},
		}, time.Now(), domain.Metadata{"sessionId": sessionID, "userId": userID}))

		slog.Info("events ws connected", slog.String("userId", userID), slog.String("sessionId", sessionID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}
