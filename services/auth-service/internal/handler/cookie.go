package handler

import (
	"net/http"
	"time"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	authtypes "github.com/vasapolrittideah/credential-auth/services/auth-service/pkg/types"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

type cookieWriter struct {
	secure     bool
	domain     string
	sameSite   http.SameSite
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func newCookieWriter(cookieCfg config.CookieConfig, tokenCfg config.TokenConfig) (cookieWriter, error) {
	sameSite, err := cookieCfg.SameSiteMode()
	if err != nil {
		return cookieWriter{}, err
	}

	return cookieWriter{
		secure:     cookieCfg.Secure,
		domain:     cookieCfg.Domain,
		sameSite:   sameSite,
		accessTTL:  tokenCfg.AccessTokenExpiresIn,
		refreshTTL: tokenCfg.RefreshTokenExpiresIn,
	}, nil
}

func (c cookieWriter) setTokens(w http.ResponseWriter, tokens *authtypes.Tokens) {
	c.set(w, AccessTokenCookie, tokens.AccessToken, c.accessTTL)
	c.set(w, RefreshTokenCookie, tokens.RefreshToken, c.refreshTTL)
}

func (c cookieWriter) setAccess(w http.ResponseWriter, accessToken string) {
	c.set(w, AccessTokenCookie, accessToken, c.accessTTL)
}

func (c cookieWriter) clear(w http.ResponseWriter) {
	for _, name := range []string{AccessTokenCookie, RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   c.domain,
			MaxAge:   -1,
			Expires:  time.Unix(0, 0),
			HttpOnly: true,
			Secure:   c.secure,
			SameSite: c.sameSite,
		})
	}
}

func (c cookieWriter) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   c.domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: c.sameSite,
	})
}
