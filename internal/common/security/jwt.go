package security

import (
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenCodec issues and verifies the signed bearer tokens used in place of
// server-side sessions. The signing key and lifetime are fixed at startup.
type TokenCodec struct {
	auth *jwtauth.JWTAuth
	ttl  time.Duration
	now  func() time.Time
}

func NewTokenCodec(key []byte, ttl time.Duration) *TokenCodec {
	return &TokenCodec{
		auth: jwtauth.New("HS256", key, nil),
		ttl:  ttl,
		now:  time.Now,
	}
}

// JWTAuth exposes the underlying verifier for the router's middleware chain.
func (c *TokenCodec) JWTAuth() *jwtauth.JWTAuth { return c.auth }

// Issue signs a token asserting the given username until ttl from now.
// Expiry is the only invalidation mechanism; no per-token state is kept.
func (c *TokenCodec) Issue(username string) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	}
	_, tokenString, err := c.auth.Encode(claims)
	return tokenString, err
}

// Verify checks signature and expiry and returns the subject. Malformed or
// badly signed tokens report ErrTokenInvalid, stale ones ErrTokenExpired;
// callers at the authentication gate treat both the same way.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	token, err := jwtauth.VerifyToken(c.auth, tokenString)
	if err != nil {
		if errors.Is(err, jwtauth.ErrExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenInvalid
	}
	sub := token.Subject()
	if sub == "" {
		return "", ErrTokenInvalid
	}
	return sub, nil
}
