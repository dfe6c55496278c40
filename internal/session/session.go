// Package session holds the backend credentials for the lifetime of
// a run. A single Session is built by config and passed explicitly to
// everything that talks to the backend; nothing reads tokens from the
// environment ad hoc.
package session

import (
	"time"

	"github.com/botdesk/botusage/internal/types"
)

// Session is an immutable bearer-token credential.
type Session struct {
	token     string
	expiresAt time.Time
}

// New builds a session. A zero expiry means the token never expires
// locally (the backend still enforces its own).
func New(token string, expiresAt time.Time) *Session {
	return &Session{token: token, expiresAt: expiresAt}
}

// Token returns the bearer token, or ErrNoSession when the session is
// missing or expired. Callers check this before any network I/O.
func (s *Session) Token() (string, error) {
	if s == nil || s.token == "" {
		return "", types.ErrNoSession
	}
	if !s.expiresAt.IsZero() && time.Now().After(s.expiresAt) {
		return "", types.ErrNoSession
	}
	return s.token, nil
}

// Valid reports whether Token would succeed.
func (s *Session) Valid() bool {
	_, err := s.Token()
	return err == nil
}
