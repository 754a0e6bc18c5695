package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"backofficeWs/internal/modules/collection/domain"
)

const errorBodyLimit = 2048

// RESTClient wraps http.Client with base URL handling shared by the collection adapters.
type RESTClient struct {
	baseURL string
	client  *http.Client
}

func NewRESTClient(baseURL string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		trimmed = "http://localhost:5000/api"
	}
	trimmed = strings.TrimRight(trimmed, "/")
	if client == nil {
		client = &http.Client{Timeout: timeoutOrDefault(timeout)}
	} else if timeout > 0 {
		client.Timeout = timeout
	}
	return &RESTClient{baseURL: trimmed, client: client}
}

// NewRequest builds a request against the base URL with the bearer token and a request id.
func (c *RESTClient) NewRequest(ctx context.Context, method, endpoint, token string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if trimmed := strings.TrimSpace(token); trimmed != "" {
		req.Header.Set("Authorization", "Bearer "+trimmed)
	}
	return req, nil
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

// DoJSON sends req and decodes a 2xx JSON answer. Failures come back as *domain.FetchError.
func (c *RESTClient) DoJSON(req *http.Request) (any, error) {
	res, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	return decodePayload(res.Body)
}

// DoMutation sends req like DoJSON, but any 2xx answer is a success: a body that is not
// JSON comes back as its trimmed text.
func (c *RESTClient) DoMutation(req *http.Request) (any, error) {
	res, err := c.roundTrip(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, domain.TransportError(err)
	}
	return decodeReply(body), nil
}

// roundTrip performs req and maps transport failures and non-2xx statuses. The caller
// closes the body of the returned response.
func (c *RESTClient) roundTrip(req *http.Request) (*http.Response, error) {
	requestID := req.Header.Get("X-Request-ID")
	slog.Debug("upstream request", slog.String("method", req.Method), slog.String("url", req.URL.String()), slog.String("requestId", requestID))

	res, err := c.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		slog.Warn("upstream request error", slog.String("url", req.URL.String()), slog.String("requestId", requestID), slog.Any("error", err))
		return nil, domain.TransportError(err)
	}
	slog.Debug("upstream response", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()), slog.String("requestId", requestID))

	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, errorBodyLimit))
		slog.Warn("upstream unexpected status", slog.Int("status", res.StatusCode), slog.String("url", req.URL.String()), slog.String("body", strings.TrimSpace(string(body))))
		return nil, domain.FromStatus(res.StatusCode, body)
	}
	return res, nil
}

func decodePayload(body io.Reader) (any, error) {
	var payload any
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &domain.FetchError{Kind: domain.KindShape, Message: "invalid JSON response", Err: fmt.Errorf("decode payload: %w", err)}
	}
	return payload, nil
}

func decodeReply(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return string(trimmed)
	}
	return payload
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return 10 * time.Second
	}
	return value
}
