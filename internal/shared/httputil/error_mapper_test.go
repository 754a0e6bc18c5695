package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type statusError struct{ status int }

func (e *statusError) Error() string { return fmt.Sprintf("status %d", e.status) }

func TestErrorMapperOrder(t *testing.T) {
	t.Parallel()

	errMissing := errors.New("missing")
	mapper := NewErrorMapper().
		WithResolver(func(err error) (HTTPErrorInfo, bool) {
			var se *statusError
			if errors.As(err, &se) {
				return HTTPErrorInfo{Status: se.status, Message: "upstream"}, true
			}
			return HTTPErrorInfo{}, false
		}).
		WithMapping(errMissing, http.StatusNotFound, "not found").
		WithDefault(http.StatusBadGateway, "bad gateway")

	cases := []struct {
		err    error
		status int
	}{
		{err: nil, status: http.StatusOK},
		{err: fmt.Errorf("wrap: %w", context.DeadlineExceeded), status: http.StatusGatewayTimeout},
		{err: context.Canceled, status: http.StatusServiceUnavailable},
		{err: fmt.Errorf("wrap: %w", &statusError{status: http.StatusForbidden}), status: http.StatusForbidden},
		{err: fmt.Errorf("wrap: %w", errMissing), status: http.StatusNotFound},
		{err: errors.New("other"), status: http.StatusBadGateway},
	}
	for _, tc := range cases {
		if got := mapper.Map(tc.err).Status; got != tc.status {
			t.Fatalf("Map(%v) expected %d got %d", tc.err, tc.status, got)
		}
	}
}
