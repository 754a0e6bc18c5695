package usecase

import (
	"context"
	"log/slog"

	"backofficeWs/internal/modules/collection/application/port"
	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/modules/forms/domain"
)

// Result is a successfully submitted form.
type Result struct {
	Form     string                            `json:"form"`
	Notice   string                            `json:"notice,omitempty"`
	Outcome  *collectiondomain.MutationOutcome `json:"outcome,omitempty"`
	Response any                               `json:"response,omitempty"`
}

// Submitter validates forms and forwards them upstream. A form that fails validation
// never reaches the server.
type Submitter struct {
	sender    port.MutationSender
	onMutated func(collection, recordID string)
}

func NewSubmitter(sender port.MutationSender, onMutated func(collection, recordID string)) *Submitter {
	return &Submitter{sender: sender, onMutated: onMutated}
}

func (s *Submitter) Submit(ctx context.Context, token, name string, form domain.Form) (*Result, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	target := form.Target()

	if target.Direct() {
		request := port.MutationRequest{Collection: name, Action: "submit", Method: target.Method, Path: target.Path, Body: form.Payload()}
		response, err := s.sender.Send(ctx, token, request)
		if err == nil {
			if rejected := collectiondomain.RejectedByBody(0, response); rejected != nil {
				err = rejected
			}
		}
		if err != nil {
			slog.Warn("form submission failed", slog.String("form", name), slog.Any("error", err))
			return nil, collectiondomain.NewMutationError(name, "submit", "", "Failed to submit form", err)
		}
		slog.Info("form submitted", slog.String("form", name))
		return &Result{Form: name, Response: response}, nil
	}

	def, ok := collectiondomain.Lookup(target.Collection)
	if !ok {
		return nil, collectiondomain.ErrUnknownCollection
	}
	prepared, err := collectionusecase.PrepareMutation(def, collectionusecase.Mutation{
		Action:   target.Action,
		RecordID: target.RecordID,
		Payload:  form.Payload(),
	})
	if err != nil {
		return nil, err
	}
	response, err := collectionusecase.SendMutation(ctx, s.sender, token, prepared)
	if err != nil {
		slog.Warn("form submission failed", slog.String("form", name), slog.String("collection", def.Name), slog.Any("error", err))
		return nil, err
	}
	if s.onMutated != nil {
		s.onMutated(def.Name, prepared.RecordID)
	}
	slog.Info("form submitted", slog.String("form", name), slog.String("collection", def.Name), slog.String("action", prepared.Spec.Action))
	return &Result{Form: name, Notice: prepared.Spec.Notice, Outcome: prepared.Outcome(response)}, nil
}
