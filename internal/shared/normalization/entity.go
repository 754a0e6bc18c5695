package normalization

import "strings"

// collectionAliases maps singular, plural and legacy page names to the canonical
// collection served by the gateway.
var collectionAliases = map[string]string{
	"":        "",
	"-":       "",
	"default": "",

	"order":  "orders",
	"orders": "orders",

	"return":  "returns",
	"returns": "returns",

	"buyback":          "buybacks",
	"buybacks":         "buybacks",
	"buyback-requests": "buybacks",

	"job":     "jobs",
	"jobs":    "jobs",
	"career":  "jobs",
	"careers": "jobs",

	"applicant":         "applicants",
	"applicants":        "applicants",
	"job-applicant":     "applicants",
	"job-applicants":    "applicants",
	"applicant-details": "applicants",

	"product":  "products",
	"products": "products",
}

var knownCollections = []string{"orders", "returns", "buybacks", "jobs", "applicants", "products"}

// NormalizeCollection converts the many spellings a client may use into the canonical
// collection name. Underscores are treated as hyphens.
//
// Example:
//
//	NormalizeCollection("Career") => "jobs"
//	NormalizeCollection("job_applicants") => "applicants"
func NormalizeCollection(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	normalized := strings.ReplaceAll(trimmed, "_", "-")

	if canonical, found := collectionAliases[normalized]; found {
		return canonical
	}
	return normalized
}

// IsKnownCollection reports whether raw names a collection served by the gateway.
func IsKnownCollection(raw string) bool {
	normalized := NormalizeCollection(raw)
	for _, name := range knownCollections {
		if name == normalized {
			return true
		}
	}
	return false
}

// KnownCollections returns every canonical collection name.
func KnownCollections() []string {
	return append([]string(nil), knownCollections...)
}
