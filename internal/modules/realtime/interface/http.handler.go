package transport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	formsdomain "backofficeWs/internal/modules/forms/domain"
	"backofficeWs/internal/modules/realtime/application/usecase"
	domain "backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/modules/realtime/infrastructure"
	"backofficeWs/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebsocketOptions tunes the collection websocket endpoint.
type WebsocketOptions struct {
	AllowedActions []string
	SendBuffer     int
	// AutoLoad runs the initial fetch as soon as the connection is up.
	AutoLoad bool
}

// NewWebsocketHandler exposes /ws/admin/:collection[/:token]. The staff token comes from
// the path, the "token" query parameter or the Authorization header.
func NewWebsocketHandler(hub *infrastructure.Hub, connectUC *usecase.ConnectCollectionUseCase, opts WebsocketOptions) echo.HandlerFunc {
	if len(opts.AllowedActions) == 0 {
		opts.AllowedActions = []string{domain.ActionCreated, domain.ActionUpdated, domain.ActionDeleted}
	}

	return func(c echo.Context) error {
		collection := normalizeCollection(c.Param("collection"))
		token := auth.ResolveToken(c.Param("token"), c.Request(), "token")
		logger := c.Logger()
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		if collection == "" {
			slog.Warn("ws handler missing collection", slog.String("ip", peerIP))
			return echo.NewHTTPError(http.StatusBadRequest, "missing collection")
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
		defer cancel()

		output, err := connectUC.Execute(ctx, usecase.ConnectCollectionInput{Token: token, Collection: collection})
		if err != nil {
			info := errorMapper.Map(err)
			slog.Warn("ws handler connect failed", slog.String("collection", collection), slog.Int("status", info.Status), slog.String("message", info.Message), slog.Any("error", err))
			logger.Warnf("ws connect rejected collection=%s ip=%s reqID=%s: %v", collection, peerIP, requestID, err)
			return echo.NewHTTPError(info.Status, info.Message)
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("ws handler upgrade failed", slog.String("collection", collection), slog.Any("error", err))
			logger.Errorf("ws upgrade failed collection=%s ip=%s reqID=%s: %v", collection, peerIP, requestID, err)
			return err
		}

		def := output.Definition
		claims := output.Claims
		userID := claims.Subject
		sessionID := uuid.NewString()

		var session atomic.Pointer[usecase.CollectionSession]
		client := infrastructure.NewClient(hub, conn, userID, sessionID, def.Name, token, opts.SendBuffer, newSessionCommandHandler(session.Load))
		opened := connectUC.OpenSession(context.Background(), def, token, sessionID, client.Key(), client)
		session.Store(opened)
		client.AddCloseHook(func(*infrastructure.Client) { opened.Close() })

		topics := buildTopics(def.Name, opts.AllowedActions)
		hub.AttachClient(client, topics)

		go client.WritePump()
		go client.ReadPump()

		client.SendDomainMessage(domain.NewSystemMessage(domain.ActionConnected, map[string]any{
			"collection":    def.Name,
			"label":         def.Label,
			"filters":       def.FilterKeys,
			"searchField":   def.SearchField,
			"sortOptions":   def.SortOptions,
			"statuses":      def.Statuses,
			"actions":       def.Actions(),
			"allowedTopics": topics,
			"roles":         claims.Roles,
			"forms":         formsdomain.Names(),
		}, time.Now(), domain.Metadata{
			"userId":     userID,
			"sessionId":  sessionID,
			"collection": def.Name,
		}))
		slog.Info("ws handler sent system.connected", slog.String("collection", def.Name), slog.String("userId", userID), slog.String("sessionId", sessionID), slog.String("authSession", claims.SessionID))

		if opts.AutoLoad && !strings.EqualFold(c.QueryParam("autoload"), "false") {
			go func() {
				loadCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
				defer cancel()
				if err := opened.Load(loadCtx); err != nil {
					sendCommandError(client, def.Name, "load", describeCommandError(err))
				}
			}()
		}

		logger.Infof("ws connected collection=%s user=%s session=%s roles=%v ip=%s reqID=%s",
			def.Name, userID, sessionID, claims.Roles, peerIP, requestID)
		return nil
	}
}
