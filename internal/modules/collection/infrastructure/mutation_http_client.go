package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
)

// MutationHTTPClient sends mutation and upload requests to the backoffice REST API.
type MutationHTTPClient struct {
	rest *RESTClient
}

func NewMutationHTTPClient(rest *RESTClient) *MutationHTTPClient {
	return &MutationHTTPClient{rest: rest}
}

func (c *MutationHTTPClient) Send(ctx context.Context, token string, mutation port.MutationRequest) (any, error) {
	method := strings.ToUpper(strings.TrimSpace(mutation.Method))
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if mutation.Body != nil {
		raw, err := json.Marshal(mutation.Body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", mutation.Collection, mutation.Action, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.rest.NewRequest(ctx, method, mutation.Path, token, body)
	if err != nil {
		return nil, domain.TransportError(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	slog.Info("upstream mutation", slog.String("collection", mutation.Collection), slog.String("action", mutation.Action), slog.String("method", method), slog.String("path", mutation.Path))
	return c.rest.DoMutation(req)
}

// Upload streams one file as multipart/form-data.
func (c *MutationHTTPClient) Upload(ctx context.Context, token string, upload port.FileUpload) (any, error) {
	if upload.Content == nil {
		return nil, fmt.Errorf("upload %s: missing content", upload.Path)
	}
	field := strings.TrimSpace(upload.Field)
	if field == "" {
		field = "file"
	}
	name := filepath.Base(strings.TrimSpace(upload.FileName))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, name)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", upload.Path, err)
	}
	if _, err := io.Copy(part, upload.Content); err != nil {
		return nil, fmt.Errorf("upload %s: %w", upload.Path, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("upload %s: %w", upload.Path, err)
	}

	req, err := c.rest.NewRequest(ctx, http.MethodPost, upload.Path, token, &buf)
	if err != nil {
		return nil, domain.TransportError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	slog.Info("upstream upload", slog.String("path", upload.Path), slog.String("file", name))
	return c.rest.DoMutation(req)
}

var (
	_ port.MutationSender = (*MutationHTTPClient)(nil)
	_ port.Uploader       = (*MutationHTTPClient)(nil)
)
