package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"backofficeWs/internal/shared/normalization"
)

// ErrorKind classifies a failed upstream call.
type ErrorKind string

const (
	KindTransport       ErrorKind = "transport"
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindForbidden       ErrorKind = "forbidden"
	KindNotFound        ErrorKind = "not_found"
	KindServer          ErrorKind = "server"
	KindRejected        ErrorKind = "rejected"
	KindShape           ErrorKind = "shape"
)

var (
	ErrTransport       = errors.New("upstream unreachable")
	ErrUnauthenticated = errors.New("upstream rejected credentials")
	ErrForbidden       = errors.New("upstream denied access")
	ErrNotFound        = errors.New("upstream resource not found")
	ErrServer          = errors.New("upstream server fault")
	ErrRejected        = errors.New("upstream rejected request")
	ErrShape           = errors.New("unexpected upstream payload")

	ErrUnknownCollection = errors.New("unknown collection")
	ErrUnknownAction     = errors.New("unknown action")
	ErrMissingRecordID   = errors.New("missing record identifier")
	ErrMutationInFlight  = errors.New("mutation already in flight for record")
)

var kindSentinels = map[ErrorKind]error{
	KindTransport:       ErrTransport,
	KindUnauthenticated: ErrUnauthenticated,
	KindForbidden:       ErrForbidden,
	KindNotFound:        ErrNotFound,
	KindServer:          ErrServer,
	KindRejected:        ErrRejected,
	KindShape:           ErrShape,
}

// FetchError is an upstream failure with the message the server sent, if any.
type FetchError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Status > 0 {
		fmt.Fprintf(&b, " (%d)", e.Status)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	} else if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is matches the sentinel of the error kind.
func (e *FetchError) Is(target error) bool {
	sentinel, ok := kindSentinels[e.Kind]
	return ok && target == sentinel
}

// TransportError wraps a network level failure.
func TransportError(err error) *FetchError {
	return &FetchError{Kind: KindTransport, Err: err}
}

// FromStatus classifies a non-2xx response. body is the raw response body; its
// "message" (then "error") field becomes the error message.
func FromStatus(status int, body []byte) *FetchError {
	fe := &FetchError{Status: status, Message: MessageFromBody(body)}
	switch {
	case status == http.StatusUnauthorized:
		fe.Kind = KindUnauthenticated
	case status == http.StatusForbidden:
		fe.Kind = KindForbidden
	case status == http.StatusNotFound:
		fe.Kind = KindNotFound
	case status >= http.StatusInternalServerError:
		fe.Kind = KindServer
	default:
		fe.Kind = KindRejected
	}
	return fe
}

// MessageFromBody extracts a human message from a JSON error body.
func MessageFromBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return MessageFromPayload(payload)
}

// MessageFromPayload returns the "message" field, falling back to "error".
func MessageFromPayload(payload any) string {
	obj, ok := normalization.AsMap(payload)
	if !ok {
		return ""
	}
	if msg := normalization.AsString(obj["message"]); msg != "" {
		return msg
	}
	if msg := normalization.AsString(obj["error"]); msg != "" {
		return msg
	}
	if nested, ok := normalization.AsMap(obj["error"]); ok {
		return normalization.AsString(nested["message"])
	}
	return ""
}

// RejectedByBody reports a 2xx response carrying {"success": false}.
func RejectedByBody(status int, payload any) *FetchError {
	obj, ok := normalization.AsMap(payload)
	if !ok {
		return nil
	}
	success, present := obj["success"].(bool)
	if !present || success {
		return nil
	}
	return &FetchError{Kind: KindRejected, Status: status, Message: MessageFromPayload(obj)}
}

// DescribeListFailure produces the banner text shown when a list fetch fails.
func DescribeListFailure(err error, label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "records"
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		switch fe.Kind {
		case KindUnauthenticated:
			return "Authentication failed. Please login again."
		case KindForbidden:
			return "Access denied. You don't have permission to view " + label + "."
		case KindNotFound:
			return capitalize(label) + " endpoint not found. Please check the API configuration."
		case KindServer:
			return "Server error. Please try again later."
		}
		if fe.Message != "" {
			return "Failed to fetch " + label + ": " + fe.Message
		}
		if fe.Err != nil {
			return "Failed to fetch " + label + ": " + fe.Err.Error()
		}
		return "Failed to fetch " + label
	}
	if err != nil && err.Error() != "" {
		return "Failed to fetch " + label + ": " + err.Error()
	}
	return "Failed to fetch " + label
}

// MutationError is a failed mutation, carrying the message surfaced to staff.
type MutationError struct {
	Collection string
	Action     string
	RecordID   string
	Message    string
	Err        error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("%s %s %s: %s", e.Collection, e.Action, e.RecordID, e.Message)
}

func (e *MutationError) Unwrap() error { return e.Err }

// NewMutationError uses the server message when there is one, else fallback.
func NewMutationError(collection, action, recordID, fallback string, err error) *MutationError {
	message := fallback
	var fe *FetchError
	if errors.As(err, &fe) && fe.Message != "" {
		message = fe.Message
	}
	if message == "" {
		message = "Request failed"
	}
	return &MutationError{Collection: collection, Action: action, RecordID: recordID, Message: message, Err: err}
}

func capitalize(value string) string {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError {
		return value
	}
	return string(unicode.ToUpper(r)) + value[size:]
}
