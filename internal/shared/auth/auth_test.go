package auth

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signHS256(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	return signed
}

func TestJWTValidatorAcceptsStaffToken(t *testing.T) {
	t.Parallel()

	token := signHS256(t, "secret", Claims{
		Roles: []string{"Admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ID:        "jti-9",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := NewJWTValidator("secret", "", "admin").Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.SessionID != "jti-9" {
		t.Fatalf("unexpected session id: %s", claims.SessionID)
	}
}

func TestJWTValidatorRejections(t *testing.T) {
	t.Parallel()

	expired := signHS256(t, "secret", Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	customer := signHS256(t, "secret", Claims{
		Roles:            []string{"customer"},
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-2"},
	})

	validator := NewJWTValidator("secret", "", "admin")
	if _, err := validator.Validate(""); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected missing token, got %v", err)
	}
	if _, err := validator.Validate(expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := validator.Validate(customer); !errors.Is(err, ErrForbiddenRole) {
		t.Fatalf("expected forbidden role, got %v", err)
	}
	if _, err := NewJWTValidator("other", "").Validate(customer); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected signature failure, got %v", err)
	}
}

func TestResolveTokenOrder(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/ws/admin/orders?token=from-query", nil)
	req.Header.Set("Authorization", "Bearer from-header")

	if got := ResolveToken(" from-path ", req, ""); got != "from-path" {
		t.Fatalf("expected path token, got %q", got)
	}
	if got := ResolveToken("", req, ""); got != "from-query" {
		t.Fatalf("expected query token, got %q", got)
	}

	req = httptest.NewRequest("GET", "/ws/admin/orders", nil)
	req.Header.Set("Authorization", "bearer from-header")
	if got := ResolveToken("", req, "token"); got != "from-header" {
		t.Fatalf("expected header token, got %q", got)
	}
	if got := ExtractBearerTokenFromHeader("Basic abc"); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}
