// Package auth holds the console's access token. Signing in happens at the
// identity provider; the console only receives the resulting token.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	pkgjwt "idservices-admin/pkg/jwt"
)

var ErrNoToken = errors.New("no access token")

// Profile is the signed-in user as shown in the console header.
type Profile struct {
	Subject   string
	Name      string
	Username  string
	Email     string
	ExpiresAt time.Time
}

// Session stores the current access token. An expired token is reported as
// absent so that auth-gated fetches wait for a fresh one.
type Session struct {
	mu     sync.RWMutex
	token  string
	claims *pkgjwt.Claims
	now    func() time.Time
	subs   map[int]func(bool)
	nextID int
}

func NewSession(token string) *Session {
	s := &Session{now: time.Now, subs: make(map[int]func(bool))}
	s.token, s.claims = normalize(token)
	return s
}

// LoadTokenFile reads a token written by an external sign-in helper.
func LoadTokenFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

// Token returns the access token when one is present and not expired.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return "", false
	}
	if s.claims != nil && s.claims.Expired(s.now()) {
		return "", false
	}
	return s.token, true
}

// SetToken replaces the token and notifies subscribers with its availability.
// An empty token signs the session out.
func (s *Session) SetToken(token string) {
	tok, claims := normalize(token)

	s.mu.Lock()
	s.token, s.claims = tok, claims
	subs := make([]func(bool), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	_, ok := s.Token()
	for _, fn := range subs {
		fn(ok)
	}
}

// Subscribe registers fn for token changes and returns its cancel func.
func (s *Session) Subscribe(fn func(available bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Profile decodes the identity claims of the current token.
func (s *Session) Profile() (Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" {
		return Profile{}, ErrNoToken
	}
	if s.claims == nil {
		return Profile{}, fmt.Errorf("access token is not a JWT")
	}
	p := Profile{
		Subject:  s.claims.Subject,
		Name:     s.claims.DisplayName(),
		Username: s.claims.PreferredUsername,
		Email:    s.claims.Email,
	}
	if s.claims.ExpiresAt != nil {
		p.ExpiresAt = s.claims.ExpiresAt.Time
	}
	return p, nil
}

// Opaque tokens are accepted as is; they simply carry no profile or expiry.
func normalize(token string) (string, *pkgjwt.Claims) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", nil
	}
	claims, err := pkgjwt.ParseUnverified(token)
	if err != nil {
		log.Debug().Err(err).Msg("access token is opaque")
		return token, nil
	}
	return token, claims
}
