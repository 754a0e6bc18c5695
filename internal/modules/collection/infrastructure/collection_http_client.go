package infrastructure

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
)

// CollectionHTTPClient reads collection lists and single records from the backoffice REST API.
type CollectionHTTPClient struct {
	rest *RESTClient
}

func NewCollectionHTTPClient(rest *RESTClient) *CollectionHTTPClient {
	return &CollectionHTTPClient{rest: rest}
}

func (c *CollectionHTTPClient) FetchList(ctx context.Context, token string, def domain.Definition, params url.Values) (any, error) {
	if strings.TrimSpace(def.ListPath) == "" {
		return nil, domain.ErrUnknownCollection
	}
	req, err := c.rest.NewRequest(ctx, http.MethodGet, def.ListPath, token, nil)
	if err != nil {
		return nil, domain.TransportError(err)
	}
	if len(params) > 0 {
		req.URL.RawQuery = params.Encode()
	}
	return c.rest.DoJSON(req)
}

func (c *CollectionHTTPClient) FetchDetail(ctx context.Context, token, path string) (any, error) {
	req, err := c.rest.NewRequest(ctx, http.MethodGet, path, token, nil)
	if err != nil {
		return nil, domain.TransportError(err)
	}
	return c.rest.DoJSON(req)
}

var (
	_ port.CollectionFetcher = (*CollectionHTTPClient)(nil)
	_ port.DetailFetcher     = (*CollectionHTTPClient)(nil)
)
