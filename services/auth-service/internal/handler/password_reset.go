package handler

import (
	"errors"
	"net/http"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/usecase"
)

const forgotPasswordMessage = "if the account exists, a reset code has been sent to its email"

// ForgotPassword answers the same way whether or not the email is registered.
func (h *AuthHTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.ForgotPassword(r.Context(), req.Email)
	if err != nil && !errors.Is(err, usecase.ErrUserNotFound) {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageBody(forgotPasswordMessage))
}

func (h *AuthHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.passwordResetUsecase.ResetPassword(r.Context(), usecase.ResetPasswordParams{
		Email:       req.Email,
		ResetToken:  req.ResetToken,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, messageBody("password reset successful"))
}
