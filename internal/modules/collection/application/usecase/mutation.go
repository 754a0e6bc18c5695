package usecase

import (
	"context"
	"strings"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/shared/normalization"
	"backofficeWs/internal/shared/validation"
)

// PreparedMutation is a mutation resolved against its collection definition.
type PreparedMutation struct {
	Spec     domain.MutationSpec
	RecordID string
	Request  port.MutationRequest
}

// PrepareMutation resolves the action and the record identifier of m.
func PrepareMutation(def domain.Definition, m Mutation) (PreparedMutation, error) {
	spec, ok := def.Mutation(m.Action)
	if !ok {
		return PreparedMutation{}, domain.ErrUnknownAction
	}
	id := strings.TrimSpace(m.RecordID)
	if id == "" && m.Record != nil {
		id = def.ResolveID(m.Record)
	}
	if spec.NeedsID() && id == "" {
		return PreparedMutation{}, domain.ErrMissingRecordID
	}
	if err := checkPatchedStatus(def, spec, m.Payload); err != nil {
		return PreparedMutation{}, err
	}
	return PreparedMutation{
		Spec:     spec,
		RecordID: id,
		Request: port.MutationRequest{
			Collection: def.Name,
			Action:     spec.Action,
			Method:     spec.Method,
			Path:       spec.ResolvePath(id),
			Body:       spec.BuildBody(id, m.Payload),
		},
	}, nil
}

// checkPatchedStatus keeps locally patched statuses within the collection's status list.
func checkPatchedStatus(def domain.Definition, spec domain.MutationSpec, payload map[string]any) error {
	if _, patches := spec.PatchFields["status"]; !patches || len(def.Statuses) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(def.Statuses))
	for _, status := range def.Statuses {
		quoted = append(quoted, "'"+status+"'")
	}
	status := strings.TrimSpace(normalization.Stringify(payload["status"]))
	if err := validation.Validator().Var(status, "required,oneof="+strings.Join(quoted, " ")); err != nil {
		return validation.FieldErrors{"status": "Must be one of: " + strings.Join(def.Statuses, ", ") + "."}
	}
	return nil
}

// SendMutation performs a prepared mutation. A transport failure, an error status or a
// {"success": false} answer all come back as *domain.MutationError.
func SendMutation(ctx context.Context, sender port.MutationSender, token string, p PreparedMutation) (any, error) {
	response, err := sender.Send(ctx, token, p.Request)
	if err == nil {
		if rejected := domain.RejectedByBody(0, response); rejected != nil {
			err = rejected
		}
	}
	if err != nil {
		return nil, domain.NewMutationError(p.Request.Collection, p.Spec.Action, p.RecordID, p.Spec.Fallback, err)
	}
	return response, nil
}

// Outcome summarizes a successful prepared mutation.
func (p PreparedMutation) Outcome(response any) *domain.MutationOutcome {
	return &domain.MutationOutcome{
		Collection: p.Request.Collection,
		Action:     p.Spec.Action,
		RecordID:   p.RecordID,
		Sync:       p.Spec.Sync.String(),
		Notice:     p.Spec.Notice,
		Response:   response,
	}
}
