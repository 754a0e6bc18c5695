package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken  = errors.New("missing token")
	ErrInvalidToken  = errors.New("invalid token")
	ErrForbiddenRole = errors.New("role not allowed")
)

// Claims are the staff claims issued by the upstream auth service.
type Claims struct {
	SessionID string   `json:"sid"`
	Email     string   `json:"email,omitempty"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasAnyRole reports whether the claims carry one of roles (case-insensitive).
// An empty roles list allows everyone.
func (c *Claims) HasAnyRole(roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	for _, owned := range c.Roles {
		for _, wanted := range roles {
			if strings.EqualFold(strings.TrimSpace(owned), strings.TrimSpace(wanted)) {
				return true
			}
		}
	}
	return false
}

type TokenValidator interface {
	Validate(token string) (*Claims, error)
}

// JWTValidator verifies bearer tokens locally with either an RSA public key (RS256)
// or a shared secret (HS256).
type JWTValidator struct {
	secret       []byte
	publicKey    *rsa.PublicKey
	allowedRoles []string
	now          func() time.Time
}

// NewJWTValidator builds a validator. When publicKeyPEM parses, RS256 is enforced;
// otherwise the HMAC secret is used.
func NewJWTValidator(secret, publicKeyPEM string, allowedRoles ...string) *JWTValidator {
	v := &JWTValidator{
		secret:       []byte(strings.TrimSpace(secret)),
		allowedRoles: allowedRoles,
		now:          time.Now,
	}
	if strings.TrimSpace(publicKeyPEM) != "" {
		if key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM)); err == nil {
			v.publicKey = key
		}
	}
	return v
}

func (v *JWTValidator) Validate(token string) (*Claims, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}
	if v.publicKey == nil && len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: jwt key not configured", ErrInvalidToken)
	}

	claims := &Claims{}
	parsedToken, err := jwt.ParseWithClaims(token, claims, v.keyFunc, jwt.WithLeeway(5*time.Second), jwt.WithTimeFunc(v.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsedToken.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	if claims.SessionID == "" {
		claims.SessionID = claims.ID
	}
	if claims.SessionID == "" {
		if claims.ExpiresAt != nil {
			claims.SessionID = fmt.Sprintf("%s:%d", claims.Subject, claims.ExpiresAt.Unix())
		} else {
			claims.SessionID = claims.Subject
		}
	}

	if !claims.HasAnyRole(v.allowedRoles) {
		return nil, fmt.Errorf("%w: %v", ErrForbiddenRole, claims.Roles)
	}
	return claims, nil
}

func (v *JWTValidator) keyFunc(t *jwt.Token) (interface{}, error) {
	if v.publicKey != nil {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v, expected RS256", t.Header["alg"])
		}
		return v.publicKey, nil
	}
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
	}
	return v.secret, nil
}
