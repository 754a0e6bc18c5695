package auth

import (
	"net/http"
	"strings"
)

// ExtractBearerTokenFromHeader extracts the JWT from an Authorization header value.
// Both "Bearer" and "bearer" prefixes are accepted.
func ExtractBearerTokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// ResolveToken picks the staff token from, in order, an explicit path value,
// the query parameter (default "token") and the Authorization header.
func ResolveToken(pathValue string, r *http.Request, queryParam string) string {
	if token := strings.TrimSpace(pathValue); token != "" {
		return token
	}
	if r == nil {
		return ""
	}
	if queryParam == "" {
		queryParam = "token"
	}
	if r.URL != nil {
		if token := strings.TrimSpace(r.URL.Query().Get(queryParam)); token != "" {
			return token
		}
	}
	return ExtractBearerTokenFromHeader(r.Header.Get("Authorization"))
}
