package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrOpaqueToken signals that the credential is not a JWT; such tokens are
// accepted as-is and never expire client-side.
var ErrOpaqueToken = errors.New("token is not a jwt")

// InspectToken decodes the token's claims without verifying the signature.
// The client never holds the backend's signing key, so the result is only
// used for expiry and identity hints; the backend remains the authority.
func InspectToken(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, fmt.Errorf("token is required")
	}
	if strings.Count(token, ".") != 2 {
		return nil, ErrOpaqueToken
	}

	claims := &TokenClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return claims, nil
}

// Expired reports whether the token carries an expiry at or before now.
// Opaque and expiry-less tokens are treated as live.
func Expired(token string, now time.Time) bool {
	claims, err := InspectToken(token)
	if err != nil {
		return false
	}
	exp := claims.ExpiresAt()
	if exp.IsZero() {
		return false
	}
	return !now.Before(exp)
}
