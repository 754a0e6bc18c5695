package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	collectionport "backofficeWs/internal/modules/collection/application/port"
	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/modules/realtime/application/port"
	"backofficeWs/internal/shared/auth"
	"backofficeWs/internal/shared/normalization"
)

type ConnectCollectionInput struct {
	Token      string
	Collection string
}

type ConnectCollectionOutput struct {
	Claims     *auth.Claims
	Definition collectiondomain.Definition
}

// ViewSettings are the timings applied to every view opened over a websocket.
type ViewSettings struct {
	SearchDelay   time.Duration
	RedirectDelay time.Duration
	LoginPath     string
}

// ConnectCollectionUseCase authenticates staff connections and opens their collection
// sessions.
type ConnectCollectionUseCase struct {
	Validator auth.TokenValidator
	Fetcher   collectionport.CollectionFetcher
	Sender    collectionport.MutationSender
	Detail    *collectionusecase.DetailLookup
	Registry  *collectionusecase.ViewRegistry
	Limiter   port.MutationLimiter
	Settings  ViewSettings
}

func NewConnectCollectionUseCase(
	validator auth.TokenValidator,
	fetcher collectionport.CollectionFetcher,
	sender collectionport.MutationSender,
	detail *collectionusecase.DetailLookup,
	registry *collectionusecase.ViewRegistry,
	limiter port.MutationLimiter,
	settings ViewSettings,
) *ConnectCollectionUseCase {
	if registry == nil {
		registry = collectionusecase.NewViewRegistry()
	}
	return &ConnectCollectionUseCase{
		Validator: validator,
		Fetcher:   fetcher,
		Sender:    sender,
		Detail:    detail,
		Registry:  registry,
		Limiter:   limiter,
		Settings:  settings,
	}
}

func (uc *ConnectCollectionUseCase) Execute(_ context.Context, input ConnectCollectionInput) (*ConnectCollectionOutput, error) {
	collection := normalization.NormalizeCollection(input.Collection)
	def, ok := collectiondomain.Lookup(collection)
	if !ok {
		return nil, collectiondomain.ErrUnknownCollection
	}
	if strings.TrimSpace(input.Token) == "" {
		return nil, auth.ErrMissingToken
	}

	claims, err := uc.Validator.Validate(input.Token)
	if err != nil {
		slog.Warn("connect-collection token validation failed", slog.String("collection", def.Name), slog.Any("error", err))
		return nil, err
	}
	slog.Info("connect-collection token valid", slog.String("collection", def.Name), slog.String("subject", claims.Subject), slog.String("sessionId", claims.SessionID), slog.Any("roles", claims.Roles))

	return &ConnectCollectionOutput{Claims: claims, Definition: def}, nil
}

// OpenSession creates the view of one connection and registers it for change-event
// reloads. The caller must Close the session when the connection ends.
func (uc *ConnectCollectionUseCase) OpenSession(ctx context.Context, def collectiondomain.Definition, token, sessionID, clientKey string, sink port.MessageSink) *CollectionSession {
	session := newCollectionSession(def, token, sessionID, clientKey, sink, uc.Detail, uc.Registry, uc.Limiter)
	session.view = collectionusecase.NewCollectionView(ctx, def, token, uc.Fetcher, uc.Sender, session.publishState, collectionusecase.ViewOptions{
		SearchDelay:   uc.Settings.SearchDelay,
		RedirectDelay: uc.Settings.RedirectDelay,
		LoginPath:     uc.Settings.LoginPath,
		OnRedirect:    session.publishRedirect,
		OnMutated:     session.invalidate,
		SessionID:     sessionID,
	})
	uc.Registry.Add(session.view)
	return session
}
