package domain

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var ErrUnknownForm = errors.New("unknown form")

// Target says where a submitted form goes: either a collection mutation or, when Path is
// set, a direct request outside any collection.
type Target struct {
	Collection string
	Action     string
	RecordID   string
	Method     string
	Path       string
}

// Direct reports whether the form bypasses the collection mutation table.
func (t Target) Direct() bool { return t.Path != "" }

// Form is an edit draft or create form. Validate runs before anything is sent; a
// validation failure is a validation.FieldErrors value.
type Form interface {
	Validate() error
	Target() Target
	Payload() map[string]any
}

var registry = map[string]func() Form{
	"return-review":      func() Form { return &ReturnReview{} },
	"buyback-decision":   func() Form { return &BuybackDecision{} },
	"order-status":       func() Form { return &OrderStatusChange{} },
	"shipment":           func() Form { return &ShipmentDraft{} },
	"job":                func() Form { return &JobDraft{} },
	"applicant-status":   func() Form { return &ApplicantStatus{} },
	"admin-registration": func() Form { return &AdminRegistration{} },
}

// New returns an empty form ready to be decoded into.
func New(name string) (Form, error) {
	factory, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrUnknownForm
	}
	return factory(), nil
}

// Names lists the registered forms, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const adminRegisterPath = "/Auth/api/admin/register"

func directPost(path string) Target {
	return Target{Method: http.MethodPost, Path: path}
}

func setIfNotBlank(payload map[string]any, key, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		payload[key] = trimmed
	}
}
