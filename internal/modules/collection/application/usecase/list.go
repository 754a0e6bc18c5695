package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
)

// Page is the answer of a one-shot list read.
type Page struct {
	Collection string          `json:"collection"`
	Items      []domain.Record `json:"items"`
	Total      int             `json:"total"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	TotalPages int             `json:"totalPages"`
}

// QueryFromValues builds a committed query from plain request values. "page",
// "pageSize" (or "size"/"limit") and "sort" drive pagination; every other known key
// is a filter. Explicit paging marks the query as touched.
func QueryFromValues(def domain.Definition, values map[string][]string) (domain.Query, error) {
	query := domain.NewQuery(def)
	filters := map[string]string{}
	for key, list := range values {
		if len(list) == 0 {
			continue
		}
		filters[key] = list[0]
	}
	query = query.WithFilters(def.KeepKnownFilters(filters), false)

	if raw := firstValue(values, "sort"); raw != "" {
		if len(def.SortOptions) > 0 && !containsString(def.SortOptions, raw) {
			return query, ErrInvalidSort
		}
		query = query.WithSort(raw)
	}
	if raw := firstValue(values, "pageSize", "size", "limit"); raw != "" {
		if size, err := strconv.Atoi(raw); err == nil {
			query = query.WithPageSize(size)
		}
	}
	if raw := firstValue(values, "page"); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil {
			query = query.WithPage(page)
		}
	}
	return query, nil
}

// FetchPage runs a single list read outside any view.
func FetchPage(ctx context.Context, fetcher port.CollectionFetcher, token string, def domain.Definition, query domain.Query) (*Page, error) {
	params := domain.BuildRequestParams(query, def.Params)
	payload, err := fetcher.FetchList(ctx, token, def, params)
	if err != nil {
		slog.Warn("collection page fetch failed", slog.String("collection", def.Name), slog.String("query", query.CanonicalKey()), slog.Any("error", err))
		return nil, err
	}
	envelope := domain.Classify(payload)
	if envelope.Kind == domain.EnvelopeUnknown {
		slog.Warn("collection payload shape not recognised", slog.String("collection", def.Name), slog.String("query", query.CanonicalKey()))
	}
	result := envelope.Result()
	return &Page{
		Collection: def.Name,
		Items:      result.Items,
		Total:      result.Total,
		Page:       query.Page,
		PageSize:   query.PageSize,
		TotalPages: domain.TotalPages(result.Total, query.PageSize),
	}, nil
}

func firstValue(values map[string][]string, keys ...string) string {
	for _, key := range keys {
		if list := values[key]; len(list) > 0 {
			if trimmed := strings.TrimSpace(list[0]); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
