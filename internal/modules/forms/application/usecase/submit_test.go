package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"backofficeWs/internal/modules/collection/application/port"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/modules/forms/domain"
	"backofficeWs/internal/shared/validation"
)

type recordingSender struct {
	requests []port.MutationRequest
	response any
	err      error
}

func (s *recordingSender) Send(_ context.Context, _ string, req port.MutationRequest) (any, error) {
	s.requests = append(s.requests, req)
	return s.response, s.err
}

func TestSubmitterBlocksInvalidForms(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	submitter := NewSubmitter(sender, nil)

	_, err := submitter.Submit(context.Background(), "t", "admin-registration", &domain.AdminRegistration{})
	var fields validation.FieldErrors
	if !errors.As(err, &fields) {
		t.Fatalf("expected field errors, got %v", err)
	}
	if len(sender.requests) != 0 {
		t.Fatalf("invalid forms must not be sent, got %d requests", len(sender.requests))
	}
}

func TestSubmitterRoutesCollectionForms(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{response: map[string]any{"success": true}}
	var mutated []string
	submitter := NewSubmitter(sender, func(collection, id string) { mutated = append(mutated, collection+"/"+id) })

	result, err := submitter.Submit(context.Background(), "t", "order-status", &domain.OrderStatusChange{OrderID: "o9", Status: "Shipped"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := sender.requests[0]
	if req.Method != http.MethodPost || req.Path != "/Admin/ChangeOrderStatus" {
		t.Fatalf("unexpected request %s %s", req.Method, req.Path)
	}
	if req.Body["orderId"] != "o9" || req.Body["status"] != "Shipped" {
		t.Fatalf("unexpected body %+v", req.Body)
	}
	if result.Notice != "Order status updated successfully" || result.Outcome == nil {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(mutated) != 1 || mutated[0] != "orders/o9" {
		t.Fatalf("unexpected mutated hooks %v", mutated)
	}
}

func TestSubmitterDirectFormFailureUsesServerMessage(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{err: &collectiondomain.FetchError{Kind: collectiondomain.KindRejected, Status: http.StatusConflict, Message: "Email already registered"}}
	submitter := NewSubmitter(sender, nil)

	_, err := submitter.Submit(context.Background(), "t", "admin-registration", &domain.AdminRegistration{
		Email: "ops@example.com", Password: "secret1", FullName: "Ops", PhoneNumber: "9504051829",
	})
	var mutationErr *collectiondomain.MutationError
	if !errors.As(err, &mutationErr) || mutationErr.Message != "Email already registered" {
		t.Fatalf("expected server message, got %v", err)
	}
	if sender.requests[0].Path != "/Auth/api/admin/register" {
		t.Fatalf("unexpected path %s", sender.requests[0].Path)
	}
}
