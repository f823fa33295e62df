package usecase

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/vasapolrittideah/credential-auth/shared/apperror"
	"github.com/vasapolrittideah/credential-auth/shared/security"
)

// Mailer delivers one-time codes to users.
type Mailer interface {
	SendHTML(to []string, subject, htmlBody, textBody string) error
}

// Option configures a usecase.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock used for lockout, challenge and token
// expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NormalizeEmail trims and lower-cases an email address. Every lookup and
// every stored email goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validatePassword(password string, minLength int) error {
	if len(password) < minLength {
		return ErrInvalidPassword.WithMessage(fmt.Sprintf("password must be at least %d characters", minLength))
	}
	if len(password) > security.MaxPasswordBytes {
		return ErrInvalidPassword.WithMessage(fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordBytes))
	}
	return nil
}

func internal(msg string, err error) error {
	return apperror.Wrap(apperror.KindInternal, msg, err)
}

// ceilMinutes rounds d up to whole minutes, with a floor of one.
func ceilMinutes(d time.Duration) int {
	m := int(math.Ceil(d.Minutes()))
	if m < 1 {
		return 1
	}
	return m
}

func pluralMinutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", n)
}
