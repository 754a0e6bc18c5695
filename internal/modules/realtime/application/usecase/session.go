package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/modules/realtime/application/port"
	"backofficeWs/internal/modules/realtime/domain"
)

var ErrRateLimited = errors.New("too many mutations, try again shortly")

const defaultLookupField = "order"

// CollectionSession binds one websocket connection to one collection view. Every view
// state is pushed to the connection as <collection>.state.
type CollectionSession struct {
	def       collectiondomain.Definition
	token     string
	sessionID string
	clientKey string

	view     *collectionusecase.CollectionView
	sink     port.MessageSink
	detail   *collectionusecase.DetailLookup
	registry *collectionusecase.ViewRegistry
	limiter  port.MutationLimiter
	now      func() time.Time
}

func newCollectionSession(def collectiondomain.Definition, token, sessionID, clientKey string, sink port.MessageSink, detail *collectionusecase.DetailLookup, registry *collectionusecase.ViewRegistry, limiter port.MutationLimiter) *CollectionSession {
	return &CollectionSession{
		def:       def,
		token:     token,
		sessionID: sessionID,
		clientKey: clientKey,
		sink:      sink,
		detail:    detail,
		registry:  registry,
		limiter:   limiter,
		now:       time.Now,
	}
}

// Collection returns the canonical collection name of the session.
func (s *CollectionSession) Collection() string { return s.def.Name }

func (s *CollectionSession) State() collectiondomain.ViewState { return s.view.State() }

func (s *CollectionSession) Load(ctx context.Context) error {
	return settle(s.view.Load(ctx))
}

func (s *CollectionSession) Refresh(ctx context.Context) error {
	return settle(s.view.Refresh(ctx))
}

func (s *CollectionSession) SetPage(ctx context.Context, cmd domain.PageCommand) error {
	return settle(s.view.SetPage(ctx, cmd.Page))
}

func (s *CollectionSession) SetPageSize(ctx context.Context, cmd domain.PageSizeCommand) error {
	return settle(s.view.SetPageSize(ctx, cmd.PageSize))
}

func (s *CollectionSession) ApplyFilters(ctx context.Context, cmd domain.FiltersCommand) error {
	return settle(s.view.ApplyFilters(ctx, cmd.Filters))
}

func (s *CollectionSession) ResetFilters(ctx context.Context) error {
	return settle(s.view.ResetFilters(ctx))
}

func (s *CollectionSession) SetSearch(_ context.Context, cmd domain.SearchCommand) error {
	return s.view.SetSearch(cmd.Value)
}

func (s *CollectionSession) SubmitSearch(ctx context.Context) error {
	return settle(s.view.SubmitSearch(ctx))
}

func (s *CollectionSession) ClearSearch(ctx context.Context) error {
	return settle(s.view.ClearSearch(ctx))
}

func (s *CollectionSession) SetSort(ctx context.Context, cmd domain.SortCommand) error {
	return settle(s.view.SetSort(ctx, cmd.Sort))
}

// Mutate dispatches a mutation and reports the outcome as <collection>.mutation.
// Failures are returned so the caller can surface the server message.
func (s *CollectionSession) Mutate(ctx context.Context, cmd domain.MutateCommand) error {
	if s.limiter != nil && !s.limiter.Allow(s.clientKey) {
		slog.Warn("collection mutation rate limited", slog.String("collection", s.def.Name), slog.String("sessionId", s.sessionID), slog.String("action", cmd.Action))
		return ErrRateLimited
	}
	outcome, err := s.view.Dispatch(ctx, collectionusecase.Mutation{
		Action:   cmd.Action,
		RecordID: cmd.RecordID,
		Record:   collectiondomain.Record(cmd.Record),
		Payload:  cmd.Payload,
	})
	if err != nil {
		return err
	}
	s.send(domain.NewCollectionMessage(s.def.Name, domain.ActionMutation, outcome.RecordID, outcome, s.now(), s.metadata(domain.Metadata{"mutation": outcome.Action})))
	return nil
}

// Detail sends one record as <collection>.detail.
func (s *CollectionSession) Detail(ctx context.Context, cmd domain.DetailCommand) error {
	if s.detail == nil {
		return collectionusecase.ErrNoDetailEndpoint
	}
	id := strings.TrimSpace(cmd.ID)
	record, err := s.detail.Detail(ctx, s.token, s.def, id)
	if err != nil {
		return err
	}
	s.send(domain.NewCollectionMessage(s.def.Name, domain.ActionDetail, id, record, s.now(), s.metadata(nil)))
	return nil
}

// Lookup runs a secondary lookup (returns by order number by default) and sends the
// matches as <collection>.lookup.
func (s *CollectionSession) Lookup(ctx context.Context, cmd domain.LookupCommand) error {
	if s.detail == nil {
		return collectionusecase.ErrUnknownLookup
	}
	field := strings.TrimSpace(cmd.Field)
	if field == "" {
		field = defaultLookupField
	}
	result, err := s.detail.Lookup(ctx, s.token, s.def, field, cmd.Value)
	if err != nil {
		return err
	}
	s.send(domain.NewCollectionMessage(s.def.Name, domain.ActionLookup, strings.TrimSpace(cmd.Value), result, s.now(), s.metadata(domain.Metadata{"lookup": field})))
	return nil
}

// Close stops the view and unregisters it.
func (s *CollectionSession) Close() {
	if s.registry != nil {
		s.registry.Remove(s.view)
	}
	s.view.Close()
	slog.Debug("collection session closed", slog.String("collection", s.def.Name), slog.String("sessionId", s.sessionID))
}

func (s *CollectionSession) publishState(state collectiondomain.ViewState) {
	s.send(domain.NewCollectionMessage(s.def.Name, domain.ActionState, "", state, s.now(), s.metadata(nil)))
}

func (s *CollectionSession) publishRedirect(path string) {
	s.send(domain.NewSystemMessage(domain.ActionRedirect, map[string]string{"path": path}, s.now(), s.metadata(nil)))
}

func (s *CollectionSession) invalidate(collection, _ string) {
	if s.detail != nil {
		s.detail.Invalidate(collection)
	}
}

func (s *CollectionSession) send(msg *domain.Message) {
	if s.sink == nil {
		return
	}
	s.sink.SendDomainMessage(msg)
}

func (s *CollectionSession) metadata(extras domain.Metadata) domain.Metadata {
	out := domain.Metadata{"sessionId": s.sessionID}
	for key, value := range extras {
		out[key] = value
	}
	return out
}

// settle hides outcomes that the published state already reports: superseded responses
// and upstream fetch failures (their banner text is part of the state).
func settle(_ collectiondomain.CollectionResult, err error) error {
	if err == nil || errors.Is(err, collectionusecase.ErrStaleResponse) {
		return nil
	}
	var fetchErr *collectiondomain.FetchError
	if errors.As(err, &fetchErr) {
		return nil
	}
	return err
}
