package domain

import (
	"encoding/json"
	"testing"
)

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	return payload
}

func idsOf(items []Record) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, ResolveID(item, "id"))
	}
	return ids
}

func TestNormalizeKnownEnvelopes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		raw   string
		kind  EnvelopeKind
		ids   []string
		total int
	}{
		{name: "bare", raw: `[{"id":"a"},{"id":"b"}]`, kind: EnvelopeBare, ids: []string{"a", "b"}, total: 2},
		{name: "data list", raw: `{"data":[{"id":"a"}],"totalCount":9}`, kind: EnvelopeDataList, ids: []string{"a"}, total: 9},
		{name: "data items", raw: `{"data":{"items":[{"id":"A"}],"total":1}}`, kind: EnvelopeDataField, ids: []string{"A"}, total: 1},
		{name: "data buybacks", raw: `{"data":{"buybacks":[{"id":"x"},{"id":"y"}]},"total":40}`, kind: EnvelopeDataField, ids: []string{"x", "y"}, total: 40},
		{name: "nested total wins", raw: `{"data":{"results":[{"id":"r"}],"count":7},"total":99}`, kind: EnvelopeDataField, ids: []string{"r"}, total: 7},
		{name: "top items", raw: `{"items":[{"id":"i"}]}`, kind: EnvelopeTopField, ids: []string{"i"}, total: 1},
		{name: "top products", raw: `{"products":[{"id":"p1"},{"id":"p2"}],"totalItems":12}`, kind: EnvelopeTopField, ids: []string{"p1", "p2"}, total: 12},
		{name: "string total ignored", raw: `{"items":[{"id":"i"}],"total":"50"}`, kind: EnvelopeTopField, ids: []string{"i"}, total: 1},
		{name: "unknown object", raw: `{"message":"ok"}`, kind: EnvelopeUnknown, ids: []string{}, total: 0},
		{name: "nested without list", raw: `{"data":{"foo":1}}`, kind: EnvelopeUnknown, ids: []string{}, total: 0},
		{name: "scalar", raw: `"nope"`, kind: EnvelopeUnknown, ids: []string{}, total: 0},
		{name: "null", raw: `null`, kind: EnvelopeUnknown, ids: []string{}, total: 0},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := decodeJSON(t, tc.raw)
			if kind := Classify(payload).Kind; kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, kind)
			}
			result := Normalize(payload)
			got := idsOf(result.Items)
			if len(got) != len(tc.ids) {
				t.Fatalf("expected ids %v, got %v", tc.ids, got)
			}
			for i := range got {
				if got[i] != tc.ids[i] {
					t.Fatalf("expected ids %v, got %v", tc.ids, got)
				}
			}
			if result.Total != tc.total {
				t.Fatalf("expected total %d, got %d", tc.total, result.Total)
			}
		})
	}
}

func TestNormalizeWrapsScalarItems(t *testing.T) {
	t.Parallel()

	result := Normalize([]any{"loose", map[string]any{"id": "ok"}})
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Items[0]["value"] != "loose" {
		t.Fatalf("expected wrapped scalar, got %#v", result.Items[0])
	}
}

func TestTotalPages(t *testing.T) {
	t.Parallel()

	cases := []struct{ total, size, want int }{
		{total: 1, size: 20, want: 1},
		{total: 20, size: 20, want: 1},
		{total: 21, size: 20, want: 2},
		{total: 101, size: 10, want: 11},
		{total: 0, size: 20, want: 0},
		{total: 15, size: 0, want: 0},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.size); got != tc.want {
			t.Fatalf("TotalPages(%d, %d) expected %d got %d", tc.total, tc.size, tc.want, got)
		}
	}
}
