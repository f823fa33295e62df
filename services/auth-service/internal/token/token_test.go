package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	"github.com/vasapolrittideah/credential-auth/shared/auth"
)

func newTestIssuer(now func() time.Time) *Issuer {
	cfg := config.TokenConfig{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		AccessTokenExpiresIn:  15 * time.Minute,
		RefreshTokenExpiresIn: 7 * 24 * time.Hour,
		Issuer:                "auth-service",
	}
	return NewIssuer(auth.NewJWTAuthenticator("auth-service", "auth-service"), cfg).WithClock(now)
}

func TestIssuer_MintPairAndVerify(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(func() time.Time { return now })

	pair, err := issuer.MintPair("u-1", "s-1")
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := issuer.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "s-1", claims.SessionID)

	claims, err = issuer.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "s-1", claims.SessionID)
}

func TestIssuer_KeySeparation(t *testing.T) {
	now := time.Now()
	issuer := newTestIssuer(func() time.Time { return now })

	pair, err := issuer.MintPair("u-1", "s-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_AccessExpiry(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	issuer := newTestIssuer(func() time.Time { return clock() })

	access, err := issuer.MintAccess("u-1", "s-1")
	require.NoError(t, err)

	later := now.Add(16 * time.Minute)
	clock = func() time.Time { return later }

	_, err = issuer.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsGarbage(t *testing.T) {
	issuer := newTestIssuer(time.Now)

	_, err := issuer.VerifyAccess("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.VerifyAccess("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsForeignIssuer(t *testing.T) {
	cfg := config.TokenConfig{
		AccessTokenSecret:     "access-secret",
		RefreshTokenSecret:    "refresh-secret",
		AccessTokenExpiresIn:  time.Minute,
		RefreshTokenExpiresIn: time.Hour,
	}
	other := NewIssuer(auth.NewJWTAuthenticator("other", "other"), cfg)
	issuer := newTestIssuer(time.Now)

	access, err := other.MintAccess("u-1", "s-1")
	require.NoError(t, err)

	_, err = issuer.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
