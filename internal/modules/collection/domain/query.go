package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Query is the committed query of a collection view. Every transition returns a copy.
//
// PaginationTouched stays false until the page or page size is changed explicitly, so the
// first load leaves pagination to the server defaults.
type Query struct {
	Filters           map[string]string
	Page              int
	PageSize          int
	PaginationTouched bool
	Sort              string
}

// NewQuery returns the initial query for a collection definition.
func NewQuery(def Definition) Query {
	q := Query{
		Page:     1,
		PageSize: def.DefaultPageSize,
		Sort:     def.DefaultSort,
		Filters:  cloneFilters(def.DefaultFilters),
	}
	return q.Normalize(def.DefaultPageSize)
}

// Normalize clamps page and size and drops blank filters.
func (q Query) Normalize(defaultPageSize int) Query {
	normalized := q
	if normalized.Page < 1 {
		normalized.Page = 1
	}
	if normalized.PageSize <= 0 {
		normalized.PageSize = defaultPageSize
	}
	if normalized.PageSize <= 0 {
		normalized.PageSize = 20
	}
	normalized.Sort = strings.TrimSpace(normalized.Sort)
	normalized.Filters = sanitizeFilters(normalized.Filters)
	return normalized
}

// WithPage moves to page n and marks pagination as touched.
func (q Query) WithPage(n int) Query {
	next := q.clone()
	if n < 1 {
		n = 1
	}
	next.Page = n
	next.PaginationTouched = true
	return next
}

// FirstPage returns to page 1 without touching pagination.
func (q Query) FirstPage() Query {
	next := q.clone()
	next.Page = 1
	return next
}

// WithPageSize changes the page size, returns to the first page and marks pagination as touched.
func (q Query) WithPageSize(size int) Query {
	next := q.clone()
	if size > 0 {
		next.PageSize = size
	}
	next.Page = 1
	next.PaginationTouched = true
	return next
}

// WithFilters replaces the committed filters and resets to page 1. The touched flag is
// kept as is unless touch is set.
func (q Query) WithFilters(filters map[string]string, touch bool) Query {
	next := q.clone()
	next.Filters = sanitizeFilters(filters)
	next.Page = 1
	if touch {
		next.PaginationTouched = true
	}
	return next
}

// WithFilter commits a single filter value and resets to page 1.
func (q Query) WithFilter(key, value string) Query {
	next := q.clone()
	key = strings.TrimSpace(key)
	if key == "" {
		return next
	}
	if next.Filters == nil {
		next.Filters = map[string]string{}
	}
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		next.Filters[key] = trimmed
	} else {
		delete(next.Filters, key)
	}
	next.Filters = sanitizeFilters(next.Filters)
	next.Page = 1
	return next
}

// WithSort changes the sort key and resets to page 1.
func (q Query) WithSort(sortKey string) Query {
	next := q.clone()
	next.Sort = strings.TrimSpace(sortKey)
	next.Page = 1
	return next
}

// Reset restores the definition defaults and clears the touched flag.
func (q Query) Reset(def Definition) Query {
	return NewQuery(def)
}

// Filter returns the committed value of key.
func (q Query) Filter(key string) string {
	return q.Filters[key]
}

// FiltersCopy returns a copy of the committed filters, never nil.
func (q Query) FiltersCopy() map[string]string {
	out := cloneFilters(q.Filters)
	if out == nil {
		out = map[string]string{}
	}
	return out
}

// CanonicalKey builds a stable key for the query, used for logging and caching.
func (q Query) CanonicalKey() string {
	var builder strings.Builder
	builder.WriteString("page=")
	builder.WriteString(strconv.Itoa(q.Page))
	builder.WriteString("&size=")
	builder.WriteString(strconv.Itoa(q.PageSize))
	builder.WriteString("&touched=")
	builder.WriteString(strconv.FormatBool(q.PaginationTouched))
	if q.Sort != "" {
		builder.WriteString("&sort=")
		builder.WriteString(q.Sort)
	}
	if key := canonicalFiltersKey(q.Filters); key != "" {
		builder.WriteString("&filters=")
		builder.WriteString(key)
	}
	return builder.String()
}

func (q Query) clone() Query {
	next := q
	next.Filters = cloneFilters(q.Filters)
	return next
}

func cloneFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	out := make(map[string]string, len(filters))
	for key, value := range filters {
		out[key] = value
	}
	return out
}

func sanitizeFilters(filters map[string]string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	sanitized := make(map[string]string, len(filters))
	for key, value := range filters {
		trimmedKey := strings.TrimSpace(key)
		trimmedValue := strings.TrimSpace(value)
		if trimmedKey == "" || trimmedValue == "" {
			continue
		}
		sanitized[trimmedKey] = trimmedValue
	}
	if len(sanitized) == 0 {
		return nil
	}
	return sanitized
}

func canonicalFiltersKey(filters map[string]string) string {
	if len(filters) == 0 {
		return ""
	}
	keys := make([]string, 0, len(filters))
	for key := range filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var builder strings.Builder
	for index, key := range keys {
		if index > 0 {
			builder.WriteString(";")
		}
		builder.WriteString(key)
		builder.WriteString("=")
		builder.WriteString(filters[key])
	}
	return builder.String()
}
