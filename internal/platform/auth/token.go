// Package auth provides session tokens, the echo middleware that validates
// them, and the pure access gate consulted before protected views are served.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in session tokens. They mirror the persisted identity
// document: the single configured administrator pair maps to RoleAdmin,
// every approved self-registered credential maps to RoleProfessional.
const (
	RoleAdmin        = "admin"
	RoleProfessional = "professional"
)

// DefaultSessionTTL is how long a minted session token stays valid.
const DefaultSessionTTL = 12 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims is the session token payload.
type Claims struct {
	jwt.RegisteredClaims
	Role     string `json:"role"`
	Approved bool   `json:"approved"`
}

// TokenIssuer mints and verifies HMAC-signed session tokens.
type TokenIssuer struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewTokenIssuer returns a TokenIssuer with the default TTL.
func NewTokenIssuer(signingKey []byte) *TokenIssuer {
	return &TokenIssuer{
		signingKey: signingKey,
		ttl:        DefaultSessionTTL,
		now:        time.Now,
	}
}

// Mint issues a signed session token for the given identity.
func (i *TokenIssuer) Mint(username, role string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Role:     role,
		Approved: true,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a session token, returning its claims.
func (i *TokenIssuer) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.signingKey, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
