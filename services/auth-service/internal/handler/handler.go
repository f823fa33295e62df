package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/credential-auth/shared/validator"
)

// AuthHTTPHandler serves the /auth endpoints.
type AuthHTTPHandler struct {
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *validator.Validator
	cookies              cookieWriter
	logger               *zerolog.Logger
}

// NewAuthHTTPHandler creates a new AuthHTTPHandler.
func NewAuthHTTPHandler(
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	validator *validator.Validator,
	tokenCfg config.TokenConfig,
	cookieCfg config.CookieConfig,
	logger *zerolog.Logger,
) (*AuthHTTPHandler, error) {
	cookies, err := newCookieWriter(cookieCfg, tokenCfg)
	if err != nil {
		return nil, err
	}

	return &AuthHTTPHandler{
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            validator,
		cookies:              cookies,
		logger:               logger,
	}, nil
}

// Routes builds the router with logging, request ids and the session gate
// applied to the protected endpoints.
func (h *AuthHTTPHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(*h.logger))
	r.Use(requestIDLogger)
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/verify-otp", h.VerifyOTP)
		r.Post("/refresh", h.Refresh)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)

		r.With(h.OptionalSession).Post("/logout", h.Logout)

		r.Group(func(r chi.Router) {
			r.Use(h.RequireSession)
			r.Post("/change-password", h.ChangePassword)
			r.Post("/mfa", h.SetMFA)
			r.Get("/me", h.Me)
		})
	})

	return r
}

// Health reports liveness.
func (h *AuthHTTPHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, messageBody("ok"))
}

// requestIDLogger adds chi's request id to the request logger.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("request_id", id)
			})
		}
		next.ServeHTTP(w, r)
	})
}
