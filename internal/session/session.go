// Package session holds the admin's bearer token for the lifetime of one
// login. The backend client reads it on every request and expires it on the
// first unauthorized response.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/metrics"
	"github.com/psds-microservice/support-console/internal/model"
)

type Session struct {
	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	admin     *model.Admin
	clock     clock.Clock
	logger    *slog.Logger

	onUnauthorized []func(reason string)
}

func New(c clock.Clock, logger *slog.Logger) *Session {
	if c == nil {
		c = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{clock: c, logger: logger.With("component", "session")}
}

// OnUnauthorized registers a teardown callback. Callbacks run once per token,
// outside the session lock, in registration order.
func (s *Session) OnUnauthorized(fn func(reason string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onUnauthorized = append(s.onUnauthorized, fn)
}

// Set stores a freshly issued token. The exp claim is read without
// verification: the console never trusts it for authorization, only to avoid
// sending requests that are certain to fail.
func (s *Session) Set(token string) {
	var exp time.Time
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.token = token
	s.expiresAt = exp
	s.admin = nil
	s.mu.Unlock()
}

func (s *Session) SetAdmin(a model.Admin) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admin = &a
}

// Admin returns the identity resolved at login, if any.
func (s *Session) Admin() (model.Admin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.admin == nil {
		return model.Admin{}, false
	}
	return *s.admin, true
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// Active reports whether a token is held and is not known to be expired.
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

func (s *Session) activeLocked() bool {
	if s.token == "" {
		return false
	}
	return s.expiresAt.IsZero() || s.clock.Now().Before(s.expiresAt)
}

// Logout drops the token without running the unauthorized callbacks.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expiresAt = time.Time{}
	s.admin = nil
}

// Expire clears the token and runs the unauthorized callbacks. Calls after
// the token is already gone are no-ops, so concurrent 401s tear down once.
func (s *Session) Expire(reason string) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		return
	}
	s.token = ""
	s.expiresAt = time.Time{}
	s.admin = nil
	callbacks := append([]func(string){}, s.onUnauthorized...)
	s.mu.Unlock()

	metrics.SessionExpirations.Inc()
	s.logger.Warn("session expired", "reason", reason)
	for _, fn := range callbacks {
		fn(reason)
	}
}
