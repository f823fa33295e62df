// Package token mints and verifies the access and refresh tokens that carry a
// user id and session id.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	authtypes "github.com/vasapolrittideah/credential-auth/services/auth-service/pkg/types"
	"github.com/vasapolrittideah/credential-auth/shared/auth"
)

// ErrInvalidToken is returned for any signature, expiry, claim or decode
// failure.
var ErrInvalidToken = auth.ErrInvalidToken

// Issuer signs access and refresh tokens with separate secrets.
type Issuer struct {
	jwtAuth auth.JWTAuthenticator
	cfg     config.TokenConfig
	now     func() time.Time
}

// NewIssuer creates an Issuer from the token configuration.
func NewIssuer(jwtAuth auth.JWTAuthenticator, cfg config.TokenConfig) *Issuer {
	return &Issuer{jwtAuth: jwtAuth, cfg: cfg, now: time.Now}
}

// WithClock makes the issuer stamp and verify tokens against now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	cp.jwtAuth = i.jwtAuth.WithClock(now)
	return &cp
}

// MintAccess signs a short-lived access token.
func (i *Issuer) MintAccess(userID, sessionID string) (string, error) {
	return i.mint(userID, sessionID, i.cfg.AccessTokenSecret, i.cfg.AccessTokenExpiresIn)
}

// MintRefresh signs a long-lived refresh token.
func (i *Issuer) MintRefresh(userID, sessionID string) (string, error) {
	return i.mint(userID, sessionID, i.cfg.RefreshTokenSecret, i.cfg.RefreshTokenExpiresIn)
}

// MintPair signs both tokens for the same session.
func (i *Issuer) MintPair(userID, sessionID string) (*authtypes.Tokens, error) {
	accessToken, err := i.MintAccess(userID, sessionID)
	if err != nil {
		return nil, err
	}

	refreshToken, err := i.MintRefresh(userID, sessionID)
	if err != nil {
		return nil, err
	}

	return &authtypes.Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(tokenString string) (*authtypes.JWTClaims, error) {
	return i.verify(tokenString, i.cfg.AccessTokenSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *Issuer) VerifyRefresh(tokenString string) (*authtypes.JWTClaims, error) {
	return i.verify(tokenString, i.cfg.RefreshTokenSecret)
}

// AccessTTL is the lifetime of access tokens.
func (i *Issuer) AccessTTL() time.Duration { return i.cfg.AccessTokenExpiresIn }

// RefreshTTL is the lifetime of refresh tokens.
func (i *Issuer) RefreshTTL() time.Duration { return i.cfg.RefreshTokenExpiresIn }

func (i *Issuer) mint(userID, sessionID, secret string, expiresIn time.Duration) (string, error) {
	now := i.now()
	claims := authtypes.JWTClaims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    i.jwtAuth.Issuer(),
			Audience:  jwt.ClaimStrings{i.jwtAuth.Audience()},
		},
	}

	token, err := i.jwtAuth.GenerateToken(claims, secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

func (i *Issuer) verify(tokenString, secret string) (*authtypes.JWTClaims, error) {
	claims := &authtypes.JWTClaims{}
	if _, err := i.jwtAuth.ValidateTokenWithClaims(tokenString, secret, claims); err != nil {
		return nil, err
	}

	if claims.UserID == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("%w: missing id or sessionId", ErrInvalidToken)
	}

	return claims, nil
}
