// Package session is the explicit handle on "who is logged in" that the cart,
// checkout and status tracker receive instead of looking it up ambiently.
package session

import (
	"sync"
	"time"

	"craftmart/internal/auth"
	"craftmart/internal/domain"
)

// Session bearer token plus the profile of the authenticated user
type Session struct {
	mu    sync.RWMutex
	token string
	user  *domain.User
	now   func() time.Time
}

// New session; an empty token yields a logged-out session
func New(token string, user *domain.User) *Session {
	s := &Session{now: time.Now}
	s.Set(token, user)
	return s
}

// Anonymous logged-out session
func Anonymous() *Session { return New("", nil) }

// WithClock overrides the clock used for expiry checks
func (s *Session) WithClock(now func() time.Time) *Session {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

// Set replaces token and profile, e.g. after login or a profile update
func (s *Session) Set(token string, user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	if user != nil {
		cp := *user
		s.user = &cp
	} else {
		s.user = nil
	}
}

// SetToken swaps the token and keeps the profile
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Logout forgets token and profile
func (s *Session) Logout() { s.Set("", nil) }

// Token returns a usable bearer token or ErrUnauthenticated
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", domain.ErrUnauthenticated
	}
	claims, err := auth.Inspect(s.token)
	if err != nil {
		return "", err
	}
	if claims.Expired(s.now()) {
		return "", &domain.OpError{Op: "session.Token", Message: "token expired", Err: domain.ErrUnauthenticated}
	}
	return s.token, nil
}

// User returns a copy of the authenticated user or ErrUnauthenticated
func (s *Session) User() (*domain.User, error) {
	if _, err := s.Token(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, &domain.OpError{Op: "session.User", Message: "profile not loaded", Err: domain.ErrUnauthenticated}
	}
	cp := *s.user
	return &cp, nil
}

// UserID from the token claims, usable before the profile is loaded
func (s *Session) UserID() (int64, error) {
	tok, err := s.Token()
	if err != nil {
		return 0, err
	}
	claims, err := auth.Inspect(tok)
	if err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

func (s *Session) Authenticated() bool {
	_, err := s.User()
	return err == nil
}
