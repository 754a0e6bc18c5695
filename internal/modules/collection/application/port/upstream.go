package port

import (
	"context"
	"io"
	"net/url"

	"backofficeWs/internal/modules/collection/domain"
)

// CollectionFetcher reads a list endpoint and returns the decoded JSON payload as is.
// Failures are *domain.FetchError values.
type CollectionFetcher interface {
	FetchList(ctx context.Context, token string, def domain.Definition, params url.Values) (any, error)
}

// DetailFetcher reads a single resource path.
type DetailFetcher interface {
	FetchDetail(ctx context.Context, token, path string) (any, error)
}

// MutationRequest is one JSON call against a mutating endpoint.
type MutationRequest struct {
	Collection string
	Action     string
	Method     string
	Path       string
	Body       map[string]any
}

// MutationSender performs mutation requests.
type MutationSender interface {
	Send(ctx context.Context, token string, req MutationRequest) (any, error)
}

// FileUpload is a multipart file forwarded upstream.
type FileUpload struct {
	Path     string
	Field    string
	FileName string
	Content  io.Reader
}

// Uploader forwards multipart uploads.
type Uploader interface {
	Upload(ctx context.Context, token string, upload FileUpload) (any, error)
}
