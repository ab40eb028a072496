package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	return key, string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func sign(t *testing.T, key *rsa.PrivateKey, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestVerifier(t *testing.T) {
	key, pub := newKeyPair(t)
	v, err := NewVerifier(pub, "https://idp.example")
	require.NoError(t, err)

	valid := Claims{
		Name: "Staff Member",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "https://idp.example",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	claims, err := v.ValidateAccessToken(sign(t, key, valid))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "Staff Member", claims.DisplayName())

	expired := valid
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	_, err = v.ValidateAccessToken(sign(t, key, expired))
	assert.Error(t, err)

	wrongIssuer := valid
	wrongIssuer.Issuer = "https://other.example"
	_, err = v.ValidateAccessToken(sign(t, key, wrongIssuer))
	assert.Error(t, err)

	otherKey, _ := newKeyPair(t)
	_, err = v.ValidateAccessToken(sign(t, otherKey, valid))
	assert.Error(t, err)

	hs, err := jwt.NewWithClaims(jwt.SigningMethodHS256, valid).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = v.ValidateAccessToken(hs)
	assert.Error(t, err)
}

func TestNewVerifierRejectsGarbage(t *testing.T) {
	_, err := NewVerifier("not a key", "")
	assert.Error(t, err)
}

func TestParseUnverified(t *testing.T) {
	key, _ := newKeyPair(t)
	token := sign(t, key, Claims{
		PreferredUsername: "staff",
		Email:             "staff@example.org",
		RegisteredClaims:  jwt.RegisteredClaims{Subject: "u2"},
	})

	claims, err := ParseUnverified(token + "\n")
	require.NoError(t, err)
	assert.Equal(t, "staff", claims.DisplayName())
	assert.False(t, claims.Expired(time.Now()))

	_, err = ParseUnverified("garbage")
	assert.Error(t, err)
}
