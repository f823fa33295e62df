package usecase

import "github.com/vasapolrittideah/credential-auth/shared/apperror"

var (
	ErrUserAlreadyExists  = apperror.New(apperror.KindConflict, "user already exists")
	ErrInvalidCredentials = apperror.New(apperror.KindInvalidCredentials, "invalid email or password")
	ErrAccountLocked      = apperror.New(apperror.KindAccountLocked, "account is locked")
	ErrUserNotFound       = apperror.New(apperror.KindNotFound, "user not found")
	ErrIncorrectPassword  = apperror.New(apperror.KindIncorrectCredential, "current password is incorrect")
	ErrInvalidPassword    = apperror.New(apperror.KindValidation, "invalid password")
	ErrInvalidEmail       = apperror.New(apperror.KindValidation, "email is required")

	ErrUnauthorized   = apperror.New(apperror.KindUnauthorized, "unauthorized")
	ErrInvalidToken   = apperror.New(apperror.KindInvalidToken, "invalid token")
	ErrSessionExpired = apperror.New(apperror.KindSessionExpired, "session expired, please log in again")

	ErrResetNotInitiated = apperror.New(apperror.KindNotInitiated, "reset process not initiated")
	ErrResetTokenExpired = apperror.New(apperror.KindExpired, "reset token expired")
	ErrInvalidResetToken = apperror.New(apperror.KindInvalidChallenge, "invalid reset token")

	ErrOTPNotInitiated = apperror.New(apperror.KindNotInitiated, "no verification code pending")
	ErrOTPExpired      = apperror.New(apperror.KindExpired, "verification code expired")
	ErrInvalidOTP      = apperror.New(apperror.KindInvalidChallenge, "invalid verification code")

	ErrTooManyAttempts = apperror.New(apperror.KindAttemptsExceeded, "too many attempts, request a new code")
)
