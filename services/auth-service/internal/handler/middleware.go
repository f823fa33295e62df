package handler

import (
	"context"
	"net/http"

	authtypes "github.com/vasapolrittideah/credential-auth/services/auth-service/pkg/types"
)

type claimsKey struct{}

// ContextWithClaims returns a context carrying the caller's token claims.
func ContextWithClaims(ctx context.Context, claims *authtypes.JWTClaims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// ClaimsFromContext returns the claims attached by the session gate.
func ClaimsFromContext(ctx context.Context) (*authtypes.JWTClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*authtypes.JWTClaims)
	return claims, ok && claims != nil
}

// RequireSession rejects requests whose access token cookie is missing,
// invalid, or bound to a session that is no longer the active one.
func (h *AuthHTTPHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := h.authUsecase.Authenticate(r.Context(), accessTokenFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

// OptionalSession attaches claims when the request carries a valid session
// and passes every request through.
func (h *AuthHTTPHandler) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessTokenFrom(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := h.authUsecase.Authenticate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithClaims(r.Context(), claims)))
	})
}

func accessTokenFrom(r *http.Request) string {
	cookie, err := r.Cookie(AccessTokenCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
