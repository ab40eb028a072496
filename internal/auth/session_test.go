package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "idservices-admin/pkg/jwt"
)

func unsignedToken(t *testing.T, claims pkgjwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test"))
	require.NoError(t, err)
	return s
}

func TestSessionToken(t *testing.T) {
	s := NewSession("")
	_, ok := s.Token()
	assert.False(t, ok)

	s.SetToken("  opaque-token \n")
	tok, ok := s.Token()
	assert.True(t, ok)
	assert.Equal(t, "opaque-token", tok)

	_, err := s.Profile()
	assert.Error(t, err)
}

func TestExpiredTokenIsAbsent(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession(unsignedToken(t, pkgjwt.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)},
	}))

	s.now = func() time.Time { return exp.Add(-time.Second) }
	_, ok := s.Token()
	assert.True(t, ok)

	s.now = func() time.Time { return exp }
	_, ok = s.Token()
	assert.False(t, ok)
}

func TestProfile(t *testing.T) {
	s := NewSession(unsignedToken(t, pkgjwt.Claims{
		Name:              "Maija Meikäläinen",
		PreferredUsername: "maija",
		Email:             "maija@example.fi",
		RegisteredClaims:  jwt.RegisteredClaims{Subject: "abc"},
	}))

	p, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, "abc", p.Subject)
	assert.Equal(t, "Maija Meikäläinen", p.Name)
	assert.Equal(t, "maija", p.Username)
	assert.True(t, p.ExpiresAt.IsZero())

	_, err = NewSession("").Profile()
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestSetTokenNotifies(t *testing.T) {
	s := NewSession("")
	var got []bool
	cancel := s.Subscribe(func(ok bool) { got = append(got, ok) })

	s.SetToken("a")
	s.SetToken("")
	cancel()
	s.SetToken("b")

	assert.Equal(t, []bool{true, false}, got)
}

func TestLoadTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(path, []byte("abc\n"), 0o600))

	tok, err := LoadTokenFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = LoadTokenFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
