package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrExpired = errors.New("token expired")

type Claims struct {
	UserID int64 `json:"user_id"`
	jwtlib.RegisteredClaims
}

// Inspect decodes a bearer token without verifying its signature. The
// client never holds the signing secret; the only question it can answer
// locally is whether the token is well-formed and not yet expired, which
// saves a doomed round-trip to the backend.
func Inspect(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	parser := jwtlib.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, errors.New("malformed token")
	}
	if claims.ExpiresAt != nil && !claims.ExpiresAt.After(time.Now()) {
		return nil, ErrExpired
	}
	return claims, nil
}
