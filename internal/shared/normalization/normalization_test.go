package normalization

import (
	"encoding/json"
	"testing"
)

func TestNormalizeCollection(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                "",
		"order":           "orders",
		" Returns ":       "returns",
		"buyback":         "buybacks",
		"careers":         "jobs",
		"job_applicants":  "applicants",
		"product":         "products",
		"custom-entity":   "custom-entity",
		"Custom_Resource": "custom-resource",
	}
	for input, expected := range cases {
		if got := NormalizeCollection(input); got != expected {
			t.Fatalf("NormalizeCollection(%q) expected %q got %q", input, expected, got)
		}
	}
	if IsKnownCollection("widgets") {
		t.Fatal("widgets should not be known")
	}
	if !IsKnownCollection("Career") {
		t.Fatal("career should resolve to jobs")
	}
}

func TestAsNumberRejectsStrings(t *testing.T) {
	t.Parallel()

	if _, ok := AsNumber("12"); ok {
		t.Fatal("numeric strings must not count as numbers")
	}
	if v, ok := AsNumber(float64(7)); !ok || v != 7 {
		t.Fatalf("unexpected number: %v %v", v, ok)
	}
	if v, ok := AsNumber(json.Number("3")); !ok || v != 3 {
		t.Fatalf("unexpected json number: %v %v", v, ok)
	}
	if AsFloat64(" 2.5 ") != 2.5 {
		t.Fatal("AsFloat64 should parse numeric strings")
	}
}

func TestStringify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{in: "abc", want: "abc"},
		{in: float64(1234567), want: "1234567"},
		{in: 12.5, want: "12.5"},
		{in: 42, want: "42"},
		{in: true, want: "true"},
		{in: nil, want: ""},
	}
	for _, tc := range cases {
		if got := Stringify(tc.in); got != tc.want {
			t.Fatalf("Stringify(%#v) expected %q got %q", tc.in, tc.want, got)
		}
	}
}

func TestAsInterfaceSlice(t *testing.T) {
	t.Parallel()

	items, ok := AsInterfaceSlice([]map[string]any{{"id": "a"}})
	if !ok || len(items) != 1 {
		t.Fatalf("unexpected slice: %v %v", items, ok)
	}
	if _, ok := AsInterfaceSlice(map[string]any{}); ok {
		t.Fatal("maps are not slices")
	}
}
