package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any signature, expiry, claim or decode
// failure.
var ErrInvalidToken = errors.New("invalid token")

// JWTAuthenticator signs and validates HS256 tokens bound to one issuer and
// audience.
type JWTAuthenticator struct {
	audience string
	issuer   string
	now      func() time.Time
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(audience, issuer string) JWTAuthenticator {
	return JWTAuthenticator{
		audience: audience,
		issuer:   issuer,
		now:      time.Now,
	}
}

// WithClock returns a copy of the authenticator that evaluates expiry against
// now instead of the wall clock.
func (a JWTAuthenticator) WithClock(now func() time.Time) JWTAuthenticator {
	a.now = now
	return a
}

// Issuer returns the issuer the authenticator signs and expects.
func (a *JWTAuthenticator) Issuer() string {
	return a.issuer
}

// Audience returns the audience the authenticator signs and expects.
func (a *JWTAuthenticator) Audience() string {
	return a.audience
}

// GenerateToken generates a JWT token with the given claims and secret.
// This is generic and accepts any type that implements jwt.Claims.
func (a *JWTAuthenticator) GenerateToken(claims jwt.Claims, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("empty signing secret")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenStr, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenStr, nil
}

// ValidateTokenWithClaims validates a JWT token and parses it into the provided claims type.
// The claims parameter should be a pointer to a struct that implements jwt.Claims.
// Every failure wraps ErrInvalidToken.
func (a *JWTAuthenticator) ValidateTokenWithClaims(tokenString, secret string, claims jwt.Claims) (*jwt.Token, error) {
	now := a.now
	if now == nil {
		now = time.Now
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return []byte(secret), nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return token, nil
}
