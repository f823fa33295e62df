package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/credential-auth/shared/apperror"
	"github.com/vasapolrittideah/credential-auth/shared/validator"
)

const maxBodyBytes = 1 << 20

var kindStatus = map[apperror.Kind]int{
	apperror.KindValidation:          http.StatusBadRequest,
	apperror.KindNotInitiated:        http.StatusBadRequest,
	apperror.KindExpired:             http.StatusBadRequest,
	apperror.KindInvalidChallenge:    http.StatusBadRequest,
	apperror.KindConflict:            http.StatusConflict,
	apperror.KindUnauthorized:        http.StatusUnauthorized,
	apperror.KindInvalidCredentials:  http.StatusUnauthorized,
	apperror.KindInvalidToken:        http.StatusUnauthorized,
	apperror.KindSessionExpired:      http.StatusUnauthorized,
	apperror.KindIncorrectCredential: http.StatusUnauthorized,
	apperror.KindAccountLocked:       http.StatusTooManyRequests,
	apperror.KindAttemptsExceeded:    http.StatusTooManyRequests,
	apperror.KindNotFound:            http.StatusNotFound,
	apperror.KindInternal:            http.StatusInternalServerError,
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind apperror.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func messageBody(message string) payload.MessageResponse {
	return payload.MessageResponse{Message: message}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeJSON(w, statusFor(kind), messageBody("something went wrong"))
		return
	}
	appErr, _ := apperror.As(err)

	if appErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(appErr.RetryAfter.Seconds()))))
	}

	body := payload.ErrorResponse{Message: appErr.Message}
	if appErr.RemainingAttempts > 0 {
		remaining := appErr.RemainingAttempts
		body.RemainingAttempts = &remaining
	}

	writeJSON(w, statusFor(kind), body)
}

// decode reads a JSON body into dst and validates it. It writes the 400
// response itself and returns false on failure.
func (h *AuthHTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, messageBody("invalid request body"))
		return false
	}

	if err := h.validator.Validate(dst); err != nil {
		var fieldErrs validator.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{
				Message: "validation failed",
				Errors:  fieldErrs,
			})
			return false
		}

		writeError(w, r, err)
		return false
	}

	return true
}
