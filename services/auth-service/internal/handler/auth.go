package handler

import (
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/usecase"
)

func (h *AuthHTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.authUsecase.Signup(r.Context(), usecase.SignupParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, payload.SignupResponse{Message: "signup successful", ID: user.ID})
}

func (h *AuthHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.MFARequired {
		writeJSON(w, http.StatusOK, payload.LoginResponse{Message: "otp sent", MFARequired: true})
		return
	}

	h.cookies.setTokens(w, result.Tokens)
	writeJSON(w, http.StatusOK, payload.LoginResponse{Message: "login success"})
}

func (h *AuthHTTPHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyOTPRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.authUsecase.VerifyLoginOTP(r.Context(), usecase.VerifyLoginOTPParams{
		Email: req.Email,
		OTP:   req.OTP,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.setTokens(w, result.Tokens)
	writeJSON(w, http.StatusOK, payload.LoginResponse{Message: "login success"})
}

func (h *AuthHTTPHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = cookie.Value
	}

	accessToken, err := h.authUsecase.Refresh(r.Context(), refreshToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cookies.setAccess(w, accessToken)
	writeJSON(w, http.StatusOK, messageBody("token refreshed"))
}

// Logout always clears the cookies and answers 200, even when the caller is
// not identified or the session cannot be cleared.
func (h *AuthHTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		if err := h.authUsecase.Logout(r.Context(), claims.UserID); err != nil {
			hlog.FromRequest(r).Error().Err(err).Str("user_id", claims.UserID).Msg("failed to clear session on logout")
		}
	}

	h.cookies.clear(w)
	writeJSON(w, http.StatusOK, messageBody("logged out"))
}

func (h *AuthHTTPHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, usecase.ErrUnauthorized)
		return
	}

	var req payload.ChangePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.authUsecase.ChangePassword(r.Context(), usecase.ChangePasswordParams{
		UserID:      claims.UserID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageBody("password changed successfully"))
}

func (h *AuthHTTPHandler) SetMFA(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, usecase.ErrUnauthorized)
		return
	}

	var req payload.SetMFARequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.authUsecase.SetMFA(r.Context(), claims.UserID, *req.Enabled)
	if err != nil {
		writeError(w, r, err)
		return
	}

	message := "mfa disabled"
	if user.IsMFAEnabled {
		message = "mfa enabled"
	}
	writeJSON(w, http.StatusOK, messageBody(message))
}

func (h *AuthHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, usecase.ErrUnauthorized)
		return
	}

	user, err := h.authUsecase.Me(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.MeResponse{
		ID:           user.ID,
		Email:        user.Email,
		IsMFAEnabled: user.IsMFAEnabled,
	})
}
