package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the signed-in state of a client. Callers never care which
// implementation backs it.
type Session interface {
	Login(token string) error
	Logout() error
	Current() (Identity, bool)
	Token() string
}

// StaticSession always reports the same identity and carries no token.
type StaticSession struct {
	identity Identity
}

func NewStaticSession(id Identity) *StaticSession {
	return &StaticSession{identity: id}
}

func (s *StaticSession) Login(string) error        { return nil }
func (s *StaticSession) Logout() error             { return nil }
func (s *StaticSession) Current() (Identity, bool) { return s.identity, true }
func (s *StaticSession) Token() string             { return "" }

// TokenSession decodes a bearer token issued by the server and persists it
// in a TokenStore. The signature is not checked here; the server does that on
// every call. Expired tokens log the session out.
type TokenSession struct {
	store TokenStore
	now   func() time.Time

	mu       sync.Mutex
	token    string
	identity Identity
}

// NewTokenSession restores a previously stored token. A stored token that is
// malformed or expired is discarded without error.
func NewTokenSession(store TokenStore) (*TokenSession, error) {
	return newTokenSession(store, time.Now)
}

func newTokenSession(store TokenStore, now func() time.Time) (*TokenSession, error) {
	const op = "auth.NewTokenSession"

	s := &TokenSession{store: store, now: now}

	token, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if token == "" {
		return s, nil
	}

	if err := s.Login(token); err != nil {
		if errors.Is(err, ErrTokenExpired) || errors.Is(err, ErrInvalidToken) {
			return s, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

// Decode reads the identity out of token and checks its expiry against now.
func Decode(token string, now time.Time) (Identity, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Identity{}, fmt.Errorf("%w: missing sub or exp", ErrInvalidToken)
	}

	id := claims.identity()
	if !now.Before(id.ExpiresAt) {
		return id, ErrTokenExpired
	}

	return id, nil
}

func (s *TokenSession) Login(token string) error {
	const op = "auth.TokenSession.Login"

	id, err := Decode(token, s.now())
	if err != nil {
		if logoutErr := s.Logout(); logoutErr != nil {
			return fmt.Errorf("%s: %w", op, errors.Join(err, logoutErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.token = token
	s.identity = id

	return nil
}

func (s *TokenSession) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.identity = Identity{}
	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("auth.TokenSession.Logout: %w", err)
	}
	return nil
}

// Current returns the identity while the token is still valid.
func (s *TokenSession) Current() (Identity, bool) {
	s.mu.Lock()
	token, id := s.token, s.identity
	s.mu.Unlock()

	if token == "" {
		return Identity{}, false
	}
	if !s.now().Before(id.ExpiresAt) {
		_ = s.Logout()
		return Identity{}, false
	}

	return id, true
}

func (s *TokenSession) Token() string {
	if _, ok := s.Current(); !ok {
		return ""
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}
