package domain

import (
	"backofficeWs/internal/shared/normalization"
)

// EnvelopeKind names the response shapes the normalizer recognises.
type EnvelopeKind string

const (
	// EnvelopeBare is a top-level JSON array.
	EnvelopeBare EnvelopeKind = "bare"
	// EnvelopeDataList is {"data": [...]}.
	EnvelopeDataList EnvelopeKind = "data-list"
	// EnvelopeDataField is {"data": {"items"|"buybacks"|"results": [...]}}.
	EnvelopeDataField EnvelopeKind = "data-field"
	// EnvelopeTopField is {"items"|"products"|"buybacks"|"results": [...]}.
	EnvelopeTopField EnvelopeKind = "top-field"
	// EnvelopeUnknown is anything else; it normalizes to an empty result.
	EnvelopeUnknown EnvelopeKind = "unknown"
)

// Envelope is the classified form of a raw list payload.
type Envelope struct {
	Kind  EnvelopeKind
	Field string
	items []any
	// container is the nested object that carried the list, when there is one.
	container map[string]any
	top       map[string]any
}

var (
	nestedListFields = []string{"items", "buybacks", "results"}
	topListFields    = []string{"items", "products", "buybacks", "results", "data"}
	totalFields      = []string{"total", "count", "totalItems", "totalCount"}
)

// Classify matches payload against the known envelopes, first match wins.
func Classify(payload any) Envelope {
	if items, ok := normalization.AsInterfaceSlice(payload); ok {
		return Envelope{Kind: EnvelopeBare, items: items}
	}

	top, ok := normalization.AsMap(payload)
	if !ok {
		return Envelope{Kind: EnvelopeUnknown}
	}

	if items, ok := normalization.AsInterfaceSlice(top["data"]); ok {
		return Envelope{Kind: EnvelopeDataList, Field: "data", items: items, top: top}
	}

	if nested, ok := normalization.AsMap(top["data"]); ok {
		for _, field := range nestedListFields {
			if items, ok := normalization.AsInterfaceSlice(nested[field]); ok {
				return Envelope{Kind: EnvelopeDataField, Field: "data." + field, items: items, container: nested, top: top}
			}
		}
	}

	for _, field := range topListFields {
		if items, ok := normalization.AsInterfaceSlice(top[field]); ok {
			env := Envelope{Kind: EnvelopeTopField, Field: field, items: items, top: top}
			if nested, ok := normalization.AsMap(top["data"]); ok {
				env.container = nested
			}
			return env
		}
	}

	env := Envelope{Kind: EnvelopeUnknown, top: top}
	if nested, ok := normalization.AsMap(top["data"]); ok {
		env.container = nested
	}
	return env
}

// Result converts the envelope into a CollectionResult.
func (e Envelope) Result() CollectionResult {
	items := make([]Record, 0, len(e.items))
	for _, raw := range e.items {
		items = append(items, asRecord(raw))
	}

	total := len(items)
	if e.Kind != EnvelopeBare {
		if value, ok := firstNumeric(e.container, totalFields); ok {
			total = value
		} else if value, ok := firstNumeric(e.top, totalFields); ok {
			total = value
		}
	}
	if total < 0 {
		total = 0
	}
	return CollectionResult{Items: items, Total: total}
}

// Normalize extracts items and total from any decoded JSON value. It never panics;
// unrecognised shapes yield an empty result.
func Normalize(payload any) CollectionResult {
	return Classify(payload).Result()
}

func asRecord(raw any) Record {
	if typed, ok := normalization.AsMap(raw); ok {
		return Record(typed)
	}
	return Record{"value": raw}
}

func firstNumeric(source map[string]any, fields []string) (int, bool) {
	if source == nil {
		return 0, false
	}
	for _, field := range fields {
		if number, ok := normalization.AsNumber(source[field]); ok {
			return int(number), true
		}
	}
	return 0, false
}
