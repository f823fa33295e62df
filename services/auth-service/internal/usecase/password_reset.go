package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/config"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-auth/shared/security"
)

// PasswordResetUsecase defines the business logic of the emailed reset code
// flow.
type PasswordResetUsecase interface {
	// ForgotPassword issues a reset challenge and mails its code. It returns
	// ErrUserNotFound for an unknown email; callers decide whether to reveal
	// that.
	ForgotPassword(ctx context.Context, email string) error

	// ResetPassword redeems the reset challenge and replaces the password.
	ResetPassword(ctx context.Context, params ResetPasswordParams) error
}

// ResetPasswordParams defines the parameters for a password reset.
type ResetPasswordParams struct {
	Email       string
	ResetToken  string
	NewPassword string
}

type passwordResetUsecase struct {
	userRepo    repository.UserRepository
	hasher      security.PasswordHasher
	mailer      Mailer
	securityCfg config.SecurityConfig
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	mailer Mailer,
	securityCfg config.SecurityConfig,
	logger *zerolog.Logger,
	opts ...Option,
) PasswordResetUsecase {
	o := buildOptions(opts)
	return &passwordResetUsecase{
		userRepo:    userRepo,
		hasher:      hasher,
		mailer:      mailer,
		securityCfg: securityCfg,
		logger:      logger,
		now:         o.now,
	}
}

func (u *passwordResetUsecase) ForgotPassword(ctx context.Context, email string) error {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("failed to get user", err)
	}

	code, err := issueChallenge(user, model.ChallengeReset, u.now(), u.securityCfg.ResetOTPExpiresIn)
	if err != nil {
		return internal("failed to generate reset code", err)
	}

	if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
		return internal("failed to save user", err)
	}

	// The challenge is stored, so a delivery failure does not fail the request.
	minutes := pluralMinutes(ceilMinutes(u.securityCfg.ResetOTPExpiresIn))
	htmlBody := fmt.Sprintf(`
		<p>Hi,</p>
		<p>We received a request to reset the password for your account.</p>
		<p>Your password reset code:</p>

		<h2>%s</h2>

		<p>This code will expire in %s.</p>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, code, minutes)
	textBody := fmt.Sprintf("Your password reset code: %s\nThis code will expire in %s.", code, minutes)

	if err := u.mailer.SendHTML([]string{user.Email}, "Password Reset Request", htmlBody, textBody); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to send password reset email")
	}

	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, params ResetPasswordParams) error {
	if err := validatePassword(params.NewPassword, u.securityCfg.MinPasswordLength); err != nil {
		return err
	}

	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return internal("failed to get user", err)
	}

	changed, redeemErr := redeemChallenge(
		user, model.ChallengeReset, params.ResetToken, u.now(), u.securityCfg.OTPMaxAttempts, resetChallengeErrors)
	if redeemErr != nil {
		if changed {
			if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
				return internal("failed to save user", err)
			}
		}
		return redeemErr
	}

	passwordHash, err := u.hasher.Hash(params.NewPassword)
	if err != nil {
		return internal("failed to hash password", err)
	}
	user.PasswordHash = passwordHash

	if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
		return internal("failed to save user", err)
	}

	return nil
}
