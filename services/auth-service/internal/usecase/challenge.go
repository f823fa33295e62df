package usecase

import (
	"time"

	"github.com/vasapolrittideah/credential-auth/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-auth/shared/apperror"
	"github.com/vasapolrittideah/credential-auth/shared/security"
)

// challengeErrors are the failures reported for one kind of challenge.
type challengeErrors struct {
	notInitiated *apperror.Error
	expired      *apperror.Error
	mismatch     *apperror.Error
}

var (
	mfaChallengeErrors = challengeErrors{
		notInitiated: ErrOTPNotInitiated,
		expired:      ErrOTPExpired,
		mismatch:     ErrInvalidOTP,
	}
	resetChallengeErrors = challengeErrors{
		notInitiated: ErrResetNotInitiated,
		expired:      ErrResetTokenExpired,
		mismatch:     ErrInvalidResetToken,
	}
)

// issueChallenge stores the digest of a fresh code in the slot for kind and
// returns the plaintext code for delivery. The other slot is left untouched.
func issueChallenge(user *model.User, kind model.ChallengeKind, now time.Time, ttl time.Duration) (string, error) {
	code, err := security.GenerateOTP()
	if err != nil {
		return "", err
	}

	user.SetChallenge(&model.Challenge{
		Kind:      kind,
		Digest:    security.DigestOTP(code),
		ExpiresAt: now.Add(ttl),
	})

	return code, nil
}

// redeemChallenge checks code against the pending challenge of kind. Expiry is
// checked before the digest. changed reports whether user was mutated and
// must be saved, which happens on a mismatch (attempt counted) and on success
// (challenge consumed).
func redeemChallenge(
	user *model.User,
	kind model.ChallengeKind,
	code string,
	now time.Time,
	maxAttempts int,
	errs challengeErrors,
) (changed bool, err error) {
	challenge := user.Challenge(kind)
	if challenge == nil {
		return false, errs.notInitiated
	}

	if challenge.Expired(now) {
		return false, errs.expired
	}

	if !security.MatchOTP(code, challenge.Digest) {
		challenge.Attempts++
		if challenge.Attempts >= maxAttempts {
			user.ClearChallenge(kind)
			return true, ErrTooManyAttempts
		}
		return true, errs.mismatch.WithRemainingAttempts(maxAttempts - challenge.Attempts)
	}

	user.ClearChallenge(kind)
	return true, nil
}
