package jwt

import (
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the subset of OIDC access token claims the console and the API use.
type Claims struct {
	Name              string `json:"name,omitempty"`
	PreferredUsername string `json:"preferred_username,omitempty"`
	Email             string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// DisplayName picks the most readable identity available.
func (c *Claims) DisplayName() string {
	switch {
	case c.Name != "":
		return c.Name
	case c.PreferredUsername != "":
		return c.PreferredUsername
	case c.Email != "":
		return c.Email
	default:
		return c.Subject
	}
}

// Expired reports whether the token carries an exp claim in the past.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time)
}

// Verifier validates RS256 access tokens issued by the identity provider.
type Verifier struct {
	key    *rsa.PublicKey
	issuer string
}

// NewVerifier parses a PEM encoded RSA public key.
// issuer is optional; when set, the iss claim must match.
func NewVerifier(publicKeyPEM, issuer string) (*Verifier, error) {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}
	return &Verifier{key: key, issuer: issuer}, nil
}

// ValidateAccessToken verifies signature, expiry and issuer.
func (v *Verifier) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.key, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// ParseUnverified decodes claims without checking the signature. The console
// uses it to show who is signed in; the API never trusts it outside development.
func ParseUnverified(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(strings.TrimSpace(tokenString), claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}
