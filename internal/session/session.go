package session

import (
	"errors"
	"strings"

	jwtsvc "photodrop/internal/pkg/jwt"
)

var ErrAuthRequired = errors.New("auth token required")

// Session owns the bearer token issued at login and is passed explicitly
// into every operation that hits the backend. Nothing else in the client
// reads token storage.
type Session struct {
	token string
}

func New(token string) *Session {
	return &Session{token: strings.TrimSpace(token)}
}

// Token returns the bearer token after a local sanity check. An empty or
// expired token fails with ErrAuthRequired before any network call.
func (s *Session) Token() (string, error) {
	if s == nil || s.token == "" {
		return "", ErrAuthRequired
	}
	if _, err := jwtsvc.Inspect(s.token); err != nil {
		return "", ErrAuthRequired
	}
	return s.token, nil
}
