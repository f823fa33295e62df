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
	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/token"
	authtypes "github.com/vasapolrittideah/credential-auth/services/auth-service/pkg/types"
	"github.com/vasapolrittideah/credential-auth/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	// Signup creates an account with no lock, no session and MFA disabled.
	Signup(ctx context.Context, params SignupParams) (*model.User, error)

	// Login checks the lock, then the password, and rotates the active
	// session. With MFA enabled it issues a challenge instead of tokens.
	Login(ctx context.Context, params LoginParams) (*authtypes.LoginResult, error)

	// VerifyLoginOTP redeems the MFA challenge issued by Login and mints
	// tokens for the session Login rotated in.
	VerifyLoginOTP(ctx context.Context, params VerifyLoginOTPParams) (*authtypes.LoginResult, error)

	// Refresh exchanges a refresh token of the active session for a new
	// access token.
	Refresh(ctx context.Context, refreshToken string) (string, error)

	// Logout clears the active session of the user.
	Logout(ctx context.Context, userID string) error

	// ChangePassword replaces the password after checking the current one.
	// The active session is kept.
	ChangePassword(ctx context.Context, params ChangePasswordParams) error

	// SetMFA turns the second factor on or off.
	SetMFA(ctx context.Context, userID string, enabled bool) (*model.User, error)

	// Me returns the user record of an identified caller.
	Me(ctx context.Context, userID string) (*model.User, error)

	// Authenticate verifies an access token and that its session is still
	// the active one.
	Authenticate(ctx context.Context, accessToken string) (*authtypes.JWTClaims, error)
}

// SignupParams defines the parameters for user registration.
type SignupParams struct {
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email    string
	Password string
}

// VerifyLoginOTPParams defines the parameters for completing an MFA login.
type VerifyLoginOTPParams struct {
	Email string
	OTP   string
}

// ChangePasswordParams defines the parameters for a password change.
type ChangePasswordParams struct {
	UserID      string
	OldPassword string
	NewPassword string
}

type authUsecase struct {
	userRepo    repository.UserRepository
	hasher      security.PasswordHasher
	tokens      *token.Issuer
	mailer      Mailer
	securityCfg config.SecurityConfig
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewAuthUsecase creates a new instance of AuthUsecase.
func NewAuthUsecase(
	userRepo repository.UserRepository,
	hasher security.PasswordHasher,
	tokens *token.Issuer,
	mailer Mailer,
	securityCfg config.SecurityConfig,
	logger *zerolog.Logger,
	opts ...Option,
) AuthUsecase {
	o := buildOptions(opts)
	return &authUsecase{
		userRepo:    userRepo,
		hasher:      hasher,
		tokens:      tokens.WithClock(o.now),
		mailer:      mailer,
		securityCfg: securityCfg,
		logger:      logger,
		now:         o.now,
	}
}

func (u *authUsecase) Signup(ctx context.Context, params SignupParams) (*model.User, error) {
	email := NormalizeEmail(params.Email)
	if email == "" {
		return nil, ErrInvalidEmail
	}

	if err := validatePassword(params.Password, u.securityCfg.MinPasswordLength); err != nil {
		return nil, err
	}

	passwordHash, err := u.hasher.Hash(params.Password)
	if err != nil {
		return nil, internal("failed to hash password", err)
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Email:        email,
		PasswordHash: passwordHash,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}

		return nil, internal("failed to create user", err)
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*authtypes.LoginResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, internal("failed to get user", err)
	}

	now := u.now()
	if err := u.checkLock(user, now); err != nil {
		return nil, err
	}

	if !u.hasher.Verify(params.Password, user.PasswordHash) {
		return nil, u.recordFailedAttempt(ctx, user, now)
	}

	user.FailedAttempts = 0
	user.LockUntil = nil

	sessionID, err := security.GenerateSessionID()
	if err != nil {
		return nil, internal("failed to generate session id", err)
	}
	user.ActiveSessionID = &sessionID

	if user.IsMFAEnabled {
		code, err := issueChallenge(user, model.ChallengeMFA, now, u.securityCfg.MFAOTPExpiresIn)
		if err != nil {
			return nil, internal("failed to generate otp", err)
		}

		if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
			return nil, internal("failed to save user", err)
		}

		u.sendLoginOTP(user, code)

		return &authtypes.LoginResult{UserID: user.ID, MFARequired: true}, nil
	}

	if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
		return nil, internal("failed to save user", err)
	}

	return u.createAuthSession(user.ID, sessionID)
}

// checkLock refuses a locked account and clears a lock that has lapsed.
func (u *authUsecase) checkLock(user *model.User, now time.Time) error {
	if user.IsLocked(now) {
		return lockedError(user, now)
	}

	if user.LockUntil != nil {
		user.LockUntil = nil
		user.FailedAttempts = 0
	}

	return nil
}

func lockedError(user *model.User, now time.Time) error {
	remaining := user.LockUntil.Sub(now)
	return ErrAccountLocked.
		WithMessage(fmt.Sprintf("account locked, try again in %s", pluralMinutes(ceilMinutes(remaining)))).
		WithRetryAfter(remaining)
}

func (u *authUsecase) recordFailedAttempt(ctx context.Context, user *model.User, now time.Time) error {
	user.FailedAttempts++

	threshold := u.securityCfg.LockoutThreshold
	if user.FailedAttempts >= threshold {
		lockUntil := now.Add(u.securityCfg.LockoutDuration)
		user.LockUntil = &lockUntil

		if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
			return internal("failed to save user", err)
		}

		u.logger.Warn().Str("user_id", user.ID).Time("lock_until", lockUntil).Msg("account locked")

		return ErrAccountLocked.
			WithMessage(fmt.Sprintf("too many failed attempts, account locked for %s",
				pluralMinutes(ceilMinutes(u.securityCfg.LockoutDuration)))).
			WithRetryAfter(u.securityCfg.LockoutDuration)
	}

	if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
		return internal("failed to save user", err)
	}

	remaining := threshold - user.FailedAttempts
	return ErrInvalidCredentials.
		WithMessage(fmt.Sprintf("invalid email or password, %d attempts remaining", remaining)).
		WithRemainingAttempts(remaining)
}

func (u *authUsecase) sendLoginOTP(user *model.User, code string) {
	minutes := pluralMinutes(ceilMinutes(u.securityCfg.MFAOTPExpiresIn))
	htmlBody := fmt.Sprintf(`
		<p>Your login verification code:</p>
		<h2>%s</h2>
		<p>Valid for %s.</p>
		<p>If you did not try to sign in, change your password.</p>
	`, code, minutes)
	textBody := fmt.Sprintf("Your login verification code: %s\nValid for %s.", code, minutes)

	if err := u.mailer.SendHTML([]string{user.Email}, "Login Verification Code", htmlBody, textBody); err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID).Msg("failed to send login otp email")
	}
}

func (u *authUsecase) VerifyLoginOTP(ctx context.Context, params VerifyLoginOTPParams) (*authtypes.LoginResult, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, internal("failed to get user", err)
	}

	now := u.now()
	if user.IsLocked(now) {
		return nil, lockedError(user, now)
	}

	changed, redeemErr := redeemChallenge(
		user, model.ChallengeMFA, params.OTP, now, u.securityCfg.OTPMaxAttempts, mfaChallengeErrors)
	if changed {
		if _, err := u.userRepo.SaveUser(ctx, user); err != nil {
			return nil, internal("failed to save user", err)
		}
	}
	if redeemErr != nil {
		return nil, redeemErr
	}

	if user.ActiveSessionID == nil {
		return nil, ErrSessionExpired
	}

	return u.createAuthSession(user.ID, *user.ActiveSessionID)
}

func (u *authUsecase) createAuthSession(userID, sessionID string) (*authtypes.LoginResult, error) {
	tokens, err := u.tokens.MintPair(userID, sessionID)
	if err != nil {
		return nil, internal("failed to mint tokens", err)
	}

	return &authtypes.LoginResult{
		UserID:    userID,
		SessionID: sessionID,
		Tokens:    tokens,
	}, nil
}

func (u *authUsecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrUnauthorized
	}

	claims, err := u.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", ErrInvalidToken
	}

	if _, err := u.activeUser(ctx, claims); err != nil {
		return "", err
	}

	accessToken, err := u.tokens.MintAccess(claims.UserID, claims.SessionID)
	if err != nil {
		return "", internal("failed to mint access token", err)
	}

	return accessToken, nil
}

func (u *authUsecase) Authenticate(ctx context.Context, accessToken string) (*authtypes.JWTClaims, error) {
	if accessToken == "" {
		return nil, ErrUnauthorized
	}

	claims, err := u.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if _, err := u.activeUser(ctx, claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// activeUser loads the user named by claims and requires the token's session
// to still be the active one.
func (u *authUsecase) activeUser(ctx context.Context, claims *authtypes.JWTClaims) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnauthorized.WithMessage("user not found")
		}

		return nil, internal("failed to get user", err)
	}

	if !user.HasActiveSession(claims.SessionID) {
		return nil, ErrSessionExpired
	}

	return user, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID string) error {
	if err := u.userRepo.ClearActiveSession(ctx, userID); err != nil {
		return internal("failed to clear session", err)
	}

	return nil
}

func (u *authUsecase) ChangePassword(ctx context.Context, params ChangePasswordParams) error {
	if err := validatePassword(params.NewPassword, u.securityCfg.MinPasswordLength); err != nil {
		return err
	}

	user, err := u.getUser(ctx, params.UserID)
	if err != nil {
		return err
	}

	if !u.hasher.Verify(params.OldPassword, user.PasswordHash) {
		return ErrIncorrectPassword
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

func (u *authUsecase) SetMFA(ctx context.Context, userID string, enabled bool) (*model.User, error) {
	user, err := u.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.IsMFAEnabled = enabled
	if !enabled {
		user.ClearChallenge(model.ChallengeMFA)
	}

	saved, err := u.userRepo.SaveUser(ctx, user)
	if err != nil {
		return nil, internal("failed to save user", err)
	}

	return saved, nil
}

func (u *authUsecase) Me(ctx context.Context, userID string) (*model.User, error) {
	return u.getUser(ctx, userID)
}

func (u *authUsecase) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, internal("failed to get user", err)
	}

	return user, nil
}
