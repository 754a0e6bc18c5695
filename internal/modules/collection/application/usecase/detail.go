package usecase

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"backofficeWs/internal/modules/collection/application/port"
	"backofficeWs/internal/modules/collection/domain"
	"backofficeWs/internal/shared/normalization"
)

var (
	ErrNoDetailEndpoint = errors.New("collection has no detail endpoint")
	ErrUnknownLookup    = errors.New("collection has no such lookup")
)

const cacheKeyDelimiter = "|"

// LookupResult is a filtered read outside the paginated list, such as returns by order.
type LookupResult struct {
	Result domain.CollectionResult `json:"result"`
	Notice string                  `json:"notice,omitempty"`
}

// DetailLookup serves single-record reads and secondary lookups through a short-lived cache.
// Entries of a collection are dropped whenever one of its records is mutated.
type DetailLookup struct {
	fetcher port.DetailFetcher
	cache   *expirable.LRU[string, any]
}

func NewDetailLookup(fetcher port.DetailFetcher, size int, ttl time.Duration) *DetailLookup {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &DetailLookup{
		fetcher: fetcher,
		cache:   expirable.NewLRU[string, any](size, nil, ttl),
	}
}

// Detail returns one record of def by identifier.
func (d *DetailLookup) Detail(ctx context.Context, token string, def domain.Definition, id string) (domain.Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrMissingRecordID
	}
	if def.DetailPath == "" {
		return nil, ErrNoDetailEndpoint
	}
	path := strings.ReplaceAll(def.DetailPath, "{id}", escapeSegment(id))
	payload, err := d.fetch(ctx, token, def.Name, path)
	if err != nil {
		return nil, err
	}
	record := normalization.MapFromPayload(payload)
	if record == nil {
		return nil, &domain.FetchError{Kind: domain.KindShape, Message: "unexpected detail payload"}
	}
	return domain.Record(record), nil
}

// Lookup runs a named secondary lookup (e.g. returns by "order"). An empty match is not
// an error; the result carries a notice instead.
func (d *DetailLookup) Lookup(ctx context.Context, token string, def domain.Definition, name, value string) (*LookupResult, error) {
	template, ok := def.LookupPaths[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrUnknownLookup
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domain.ErrMissingRecordID
	}
	path := strings.ReplaceAll(template, "{id}", escapeSegment(value))
	payload, err := d.fetch(ctx, token, def.Name, path)
	if err != nil {
		return nil, err
	}
	result := domain.Normalize(payload)
	if len(result.Items) == 0 && domain.Classify(payload).Kind == domain.EnvelopeUnknown {
		// single object answers
		if record := domain.Record(normalization.MapFromPayload(payload)); record != nil && def.ResolveID(record) != "" {
			result = domain.CollectionResult{Items: []domain.Record{record}, Total: 1}
		}
	}
	out := &LookupResult{Result: result}
	if len(result.Items) == 0 {
		out.Notice = "No " + def.Name + " found for this " + lookupSubject(name) + "."
	}
	return out, nil
}

// Invalidate drops cached reads of a collection.
func (d *DetailLookup) Invalidate(collection string) {
	prefix := collection + cacheKeyDelimiter
	for _, key := range d.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			d.cache.Remove(key)
		}
	}
}

func (d *DetailLookup) fetch(ctx context.Context, token, collection, path string) (any, error) {
	key := collection + cacheKeyDelimiter + path + cacheKeyDelimiter + token
	if cached, ok := d.cache.Get(key); ok {
		slog.Debug("detail cache hit", slog.String("collection", collection), slog.String("path", path))
		return cached, nil
	}
	payload, err := d.fetcher.FetchDetail(ctx, token, path)
	if err != nil {
		return nil, err
	}
	d.cache.Add(key, payload)
	return payload, nil
}

func lookupSubject(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "order":
		return "order number"
	default:
		return name
	}
}

func escapeSegment(value string) string {
	return url.PathEscape(value)
}
