// Package auth keeps the session cookie between CLI invocations and decodes
// what it can from it locally.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload the auth service puts in the session token.
type Claims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	ID       uint   `json:"id"`
	jwt.RegisteredClaims
}

// ErrMalformedToken is returned when the cookie is not a decodable JWT.
var ErrMalformedToken = errors.New("malformed session token")

// ParseClaims decodes the token payload without verifying the signature.
// The backend stays the authority on validity; this is only used to show who
// is logged in and to warn early about an expired session.
func ParseClaims(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}

// Expiry returns the expiry time, or the zero time when the token has none.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired reports whether the token carries an expiry that is before now.
func (c *Claims) Expired(now time.Time) bool {
	exp := c.Expiry()
	return !exp.IsZero() && now.After(exp)
}

// NewToken signs claims with HS256. Used by the development server.
func NewToken(claims Claims, secret []byte) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyToken parses and verifies an HS256 token signed with secret.
func VerifyToken(token string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
