package types

import "github.com/golang-jwt/jwt/v5"

// JWTClaims are embedded in both access and refresh tokens.
type JWTClaims struct {
	UserID    string `json:"id"`
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// Tokens is the signed credential pair handed to a client after a full login.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// LoginResult is returned by a password login. When MFARequired is set no
// session is usable yet and the caller must complete the OTP challenge.
type LoginResult struct {
	UserID      string
	SessionID   string
	MFARequired bool
	Tokens      *Tokens
}
