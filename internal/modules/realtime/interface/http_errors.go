package transport

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	collectionusecase "backofficeWs/internal/modules/collection/application/usecase"
	collectiondomain "backofficeWs/internal/modules/collection/domain"
	formsdomain "backofficeWs/internal/modules/forms/domain"
	"backofficeWs/internal/modules/realtime/application/usecase"
	"backofficeWs/internal/shared/auth"
	"backofficeWs/internal/shared/httputil"
	"backofficeWs/internal/shared/validation"
)

var errInvalidPayload = errors.New("invalid payload")

var errorMapper = httputil.NewErrorMapper().
	WithResolver(resolveFieldErrors).
	WithResolver(resolveMutationError).
	WithResolver(resolveFetchError).
	WithMapping(errInvalidPayload, http.StatusBadRequest, "invalid payload").
	WithMapping(auth.ErrMissingToken, http.StatusBadRequest, "missing token").
	WithMapping(auth.ErrInvalidToken, http.StatusUnauthorized, "invalid token").
	WithMapping(auth.ErrForbiddenRole, http.StatusForbidden, "forbidden").
	WithMapping(collectiondomain.ErrUnknownCollection, http.StatusNotFound, "unknown collection").
	WithMapping(collectiondomain.ErrUnknownAction, http.StatusBadRequest, "unsupported action").
	WithMapping(collectiondomain.ErrMissingRecordID, http.StatusBadRequest, "missing record id").
	WithMapping(collectiondomain.ErrMutationInFlight, http.StatusConflict, "an update for this record is already in progress").
	WithMapping(collectionusecase.ErrInvalidSort, http.StatusBadRequest, "unsupported sort").
	WithMapping(collectionusecase.ErrNoSearchField, http.StatusBadRequest, "search is not available for this collection").
	WithMapping(collectionusecase.ErrNoDetailEndpoint, http.StatusNotFound, "detail is not available for this collection").
	WithMapping(collectionusecase.ErrUnknownLookup, http.StatusNotFound, "lookup is not available for this collection").
	WithMapping(collectionusecase.ErrViewClosed, http.StatusGone, "view closed").
	WithMapping(usecase.ErrRateLimited, http.StatusTooManyRequests, "too many updates, try again shortly").
	WithMapping(formsdomain.ErrUnknownForm, http.StatusNotFound, "unknown form")

func resolveFieldErrors(err error) (httputil.HTTPErrorInfo, bool) {
	var fields validation.FieldErrors
	if !errors.As(err, &fields) {
		return httputil.HTTPErrorInfo{}, false
	}
	return httputil.HTTPErrorInfo{Status: http.StatusUnprocessableEntity, Message: "Invalid form data."}, true
}

func resolveMutationError(err error) (httputil.HTTPErrorInfo, bool) {
	var mutationErr *collectiondomain.MutationError
	if !errors.As(err, &mutationErr) {
		return httputil.HTTPErrorInfo{}, false
	}
	status := http.StatusBadGateway
	var fetchErr *collectiondomain.FetchError
	if errors.As(mutationErr.Err, &fetchErr) {
		status = statusForFetchError(fetchErr)
	}
	return httputil.HTTPErrorInfo{Status: status, Message: mutationErr.Message}, true
}

func resolveFetchError(err error) (httputil.HTTPErrorInfo, bool) {
	var fetchErr *collectiondomain.FetchError
	if !errors.As(err, &fetchErr) {
		return httputil.HTTPErrorInfo{}, false
	}
	message := fetchErr.Message
	if message == "" {
		message = http.StatusText(statusForFetchError(fetchErr))
	}
	return httputil.HTTPErrorInfo{Status: statusForFetchError(fetchErr), Message: message}, true
}

func statusForFetchError(err *collectiondomain.FetchError) int {
	switch err.Kind {
	case collectiondomain.KindUnauthenticated:
		return http.StatusUnauthorized
	case collectiondomain.KindForbidden:
		return http.StatusForbidden
	case collectiondomain.KindNotFound:
		return http.StatusNotFound
	case collectiondomain.KindRejected:
		if err.Status >= 400 && err.Status < 500 {
			return err.Status
		}
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// respondError writes err as an echo HTTP error; validation failures carry their fields.
func respondError(c echo.Context, err error) error {
	info := errorMapper.Map(err)
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		return c.JSON(info.Status, map[string]any{"message": info.Message, "fields": fields})
	}
	return echo.NewHTTPError(info.Status, info.Message)
}

// describeCommandError is the reason sent to websocket clients.
func describeCommandError(err error) string {
	var fields validation.FieldErrors
	if errors.As(err, &fields) {
		return fields.Error()
	}
	return errorMapper.Map(err).Message
}
