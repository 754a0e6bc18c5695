package domain

import (
	"strings"

	"backofficeWs/internal/shared/normalization"
)

// Record is one loosely-typed backend entity as returned by the list endpoints.
type Record map[string]any

// Lookup resolves a dotted path such as "_id.$oid".
func (r Record) Lookup(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	parts := strings.Split(strings.TrimSpace(path), ".")
	var current any = map[string]any(r)
	for _, part := range parts {
		obj, ok := normalization.AsMap(current)
		if !ok {
			return nil, false
		}
		value, exists := obj[part]
		if !exists {
			return nil, false
		}
		current = value
	}
	return current, true
}

// Merge returns a copy of r with changes applied.
func (r Record) Merge(changes map[string]any) Record {
	out := make(Record, len(r)+len(changes))
	for key, value := range r {
		out[key] = value
	}
	for key, value := range changes {
		out[key] = value
	}
	return out
}

// ResolveID returns the first candidate field holding a scalar, non-blank value,
// stringified. Object and array values are skipped so "_id.$oid" can sit ahead of "_id".
func ResolveID(r Record, candidates ...string) string {
	for _, candidate := range candidates {
		value, ok := r.Lookup(candidate)
		if !ok || value == nil {
			continue
		}
		switch value.(type) {
		case map[string]any, []any:
			continue
		}
		if id := strings.TrimSpace(normalization.Stringify(value)); id != "" {
			return id
		}
	}
	return ""
}

// PatchByID merges changes into every record whose resolved identifier equals id.
// The input slice is left untouched.
func PatchByID(items []Record, candidates []string, id string, changes map[string]any) ([]Record, bool) {
	id = strings.TrimSpace(id)
	out := make([]Record, len(items))
	patched := false
	for i, item := range items {
		if id != "" && ResolveID(item, candidates...) == id {
			out[i] = item.Merge(changes)
			patched = true
			continue
		}
		out[i] = item
	}
	return out, patched
}

// RemoveByID drops every record whose resolved identifier equals id.
func RemoveByID(items []Record, candidates []string, id string) ([]Record, bool) {
	id = strings.TrimSpace(id)
	out := make([]Record, 0, len(items))
	removed := false
	for _, item := range items {
		if id != "" && ResolveID(item, candidates...) == id {
			removed = true
			continue
		}
		out = append(out, item)
	}
	return out, removed
}
