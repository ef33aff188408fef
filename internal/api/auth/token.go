// Package auth issues and verifies the session token carried in the token
// cookie, and guards user-scoped routes.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/cuongbtq/solosphere-be/internal/api/domain"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid
const DefaultTokenTTL = 24 * time.Hour

var (
	ErrUnauthenticated = errors.New("unauthorized access")
	ErrForbidden       = errors.New("forbidden access")
)

// Identity is the verified caller
type Identity struct {
	Email string
	Name  string
	Photo string
}

// Claims is the token payload
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Photo string `json:"photo,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens with one shared secret
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (t *TokenIssuer) TTL() time.Duration {
	return t.ttl
}

// Issue signs a token for the identity, expiring after the configured TTL.
// The email is stored normalized.
func (t *TokenIssuer) Issue(id Identity) (string, error) {
	id.Email = domain.NormalizeEmail(id.Email)
	if id.Email == "" {
		return "", fmt.Errorf("token subject email is required")
	}

	now := t.now()
	claims := &Claims{
		Email: id.Email,
		Name:  id.Name,
		Photo: id.Photo,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm and expiry. Any failure is reported as
// ErrUnauthenticated wrapping the parser error.
func (t *TokenIssuer) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, ErrUnauthenticated
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims,
		func(*jwt.Token) (interface{}, error) {
			return t.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if !token.Valid || claims.Email == "" {
		return Identity{}, ErrUnauthenticated
	}

	return Identity{
		Email: domain.NormalizeEmail(claims.Email),
		Name:  claims.Name,
		Photo: claims.Photo,
	}, nil
}
