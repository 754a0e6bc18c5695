package domain

import (
	"net/url"
	"strconv"
	"strings"
)

// ParamNames describes how a backend endpoint spells its query parameters.
type ParamNames struct {
	Page     string
	PageSize string
	Sort     string
	// AlwaysPaginate sends page and size even before pagination is touched.
	AlwaysPaginate bool
	// ZeroBasedPage sends page-1.
	ZeroBasedPage bool
	// FilterAliases renames committed filter keys on the wire.
	FilterAliases map[string]string
}

// BuildRequestParams turns a query into the query string of a list request.
// Blank filters are omitted; page and size only appear once pagination was touched
// (or the endpoint always paginates) and only when the endpoint names them.
func BuildRequestParams(q Query, names ParamNames) url.Values {
	values := url.Values{}
	for key, value := range q.Filters {
		trimmedValue := strings.TrimSpace(value)
		if trimmedValue == "" {
			continue
		}
		mapped := names.mapFilterKey(key)
		if mapped == "" {
			continue
		}
		values.Set(mapped, trimmedValue)
	}

	if q.PaginationTouched || names.AlwaysPaginate {
		page := q.Page
		if page < 1 {
			page = 1
		}
		if names.ZeroBasedPage {
			page--
		}
		if names.Page != "" {
			values.Set(names.Page, strconv.Itoa(page))
		}
		if names.PageSize != "" && q.PageSize > 0 {
			values.Set(names.PageSize, strconv.Itoa(q.PageSize))
		}
	}

	if names.Sort != "" && strings.TrimSpace(q.Sort) != "" {
		values.Set(names.Sort, strings.TrimSpace(q.Sort))
	}
	return values
}

func (n ParamNames) mapFilterKey(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return ""
	}
	if aliased, ok := n.FilterAliases[trimmed]; ok {
		return strings.TrimSpace(aliased)
	}
	return trimmed
}
