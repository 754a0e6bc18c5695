package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	"backofficeWs/internal/modules/realtime/application/usecase"
	domain "backofficeWs/internal/modules/realtime/domain"
	"backofficeWs/internal/modules/realtime/infrastructure"
)

type sessionCommand func(ctx context.Context, session *usecase.CollectionSession, raw json.RawMessage) error

var sessionCommands = map[string]sessionCommand{
	"load":             withoutPayload((*usecase.CollectionSession).Load),
	"refresh":          withoutPayload((*usecase.CollectionSession).Refresh),
	"set_page":         withPayload((*usecase.CollectionSession).SetPage),
	"set_page_size":    withPayload((*usecase.CollectionSession).SetPageSize),
	"apply_filters":    withPayload((*usecase.CollectionSession).ApplyFilters),
	"reset_filters":    withoutPayload((*usecase.CollectionSession).ResetFilters),
	"set_search":       withPayload((*usecase.CollectionSession).SetSearch),
	"submit_search":    withoutPayload((*usecase.CollectionSession).SubmitSearch),
	"clear_search":     withoutPayload((*usecase.CollectionSession).ClearSearch),
	"set_sort":         withPayload((*usecase.CollectionSession).SetSort),
	"mutate":           withPayload((*usecase.CollectionSession).Mutate),
	"detail":           withPayload((*usecase.CollectionSession).Detail),
	"lookup":           withPayload((*usecase.CollectionSession).Lookup),
	"returns_by_order": withPayload(lookupByOrder),
}

func withoutPayload(fn func(*usecase.CollectionSession, context.Context) error) sessionCommand {
	return func(ctx context.Context, session *usecase.CollectionSession, _ json.RawMessage) error {
		return fn(session, ctx)
	}
}

func withPayload[T any](fn func(*usecase.CollectionSession, context.Context, T) error) sessionCommand {
	return func(ctx context.Context, session *usecase.CollectionSession, raw json.RawMessage) error {
		payload, err := decodeCommand[T](raw)
		if err != nil {
			return errInvalidPayload
		}
		return fn(session, ctx, payload)
	}
}

// lookupByOrder accepts {"orderNumber": "..."} as well as {"value": "..."}.
func lookupByOrder(session *usecase.CollectionSession, ctx context.Context, cmd orderLookupCommand) error {
	value := cmd.OrderNumber
	if strings.TrimSpace(value) == "" {
		value = cmd.Value
	}
	return session.Lookup(ctx, domain.LookupCommand{Field: "order", Value: value})
}

type orderLookupCommand struct {
	OrderNumber string `json:"orderNumber"`
	Value       string `json:"value"`
}

// newSessionCommandHandler routes websocket commands of one connection to its session.
// The session is read through get because it is opened after the client exists.
func newSessionCommandHandler(get func() *usecase.CollectionSession) infrastructure.CommandHandler {
	return func(ctx context.Context, client *infrastructure.Client, cmd infrastructure.Command) {
		action := strings.ToLower(strings.TrimSpace(cmd.Action))
		session := get()
		if session == nil {
			sendCommandError(client, client.Collection(), action, "session not ready")
			return
		}
		run, ok := sessionCommands[action]
		if !ok {
			slog.Debug("ws handler unknown action", slog.String("collection", session.Collection()), slog.String("sessionId", client.SessionID()), slog.String("action", cmd.Action))
			sendCommandError(client, session.Collection(), action, "unsupported action")
			return
		}
		if err := run(ctx, session, cmd.Payload); err != nil {
			if errors.Is(err, collectionusecase.ErrViewClosed) {
				return
			}
			slog.Warn("ws command failed", slog.String("collection", session.Collection()), slog.String("sessionId", client.SessionID()), slog.String("action", action), slog.Any("error", err))
			sendCommandError(client, session.Collection(), action, describeCommandError(err))
		}
	}
}

func sendCommandError(client *infrastructure.Client, collection, action, reason string) {
	message := domain.NewErrorMessage(collection, action, reason, time.Now(), domain.Metadata{"sessionId": client.SessionID()})
	client.SendDomainMessage(message)
}

func decodeCommand[T any](raw json.RawMessage) (T, error) {
	var payload T
	if len(raw) == 0 {
		return payload, nil
	}
	return payload, json.Unmarshal(raw, &payload)
}
