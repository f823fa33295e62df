// Package apperror defines the error kinds that travel from the usecases to the
// transport boundary. Handlers translate a Kind into a status code; they never
// inspect message text.
package apperror

import (
	"errors"
	"time"
)

// Kind classifies a failure.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindInvalidCredentials
	KindInvalidToken
	KindSessionExpired
	KindIncorrectCredential
	KindAccountLocked
	KindNotFound
	KindNotInitiated
	KindExpired
	KindInvalidChallenge
	KindAttemptsExceeded
)

var kindNames = map[Kind]string{
	KindInternal:            "internal",
	KindValidation:          "validation",
	KindConflict:            "conflict",
	KindUnauthorized:        "unauthorized",
	KindInvalidCredentials:  "invalid_credentials",
	KindInvalidToken:        "invalid_token",
	KindSessionExpired:      "session_expired",
	KindIncorrectCredential: "incorrect_credential",
	KindAccountLocked:       "account_locked",
	KindNotFound:            "not_found",
	KindNotInitiated:        "not_initiated",
	KindExpired:             "expired",
	KindInvalidChallenge:    "invalid_challenge",
	KindAttemptsExceeded:    "attempts_exceeded",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Error is a classified failure. Message is safe to show to the caller.
type Error struct {
	Kind    Kind
	Message string

	// RetryAfter is set for lockouts and tells the caller how long to wait.
	RetryAfter time.Duration

	// RemainingAttempts is set when a failed login still has attempts left
	// before the account locks.
	RemainingAttempts int

	cause error
}

// New creates an Error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error of the given kind that keeps err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error of the same kind, so a detailed error
// still matches the exported sentinel of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// WithMessage returns a copy of e carrying a different caller-visible message.
func (e *Error) WithMessage(message string) *Error {
	cp := *e
	cp.Message = message
	return &cp
}

// WithRetryAfter returns a copy of e with RetryAfter set.
func (e *Error) WithRetryAfter(d time.Duration) *Error {
	cp := *e
	cp.RetryAfter = d
	return &cp
}

// WithRemainingAttempts returns a copy of e with RemainingAttempts set.
func (e *Error) WithRemainingAttempts(n int) *Error {
	cp := *e
	cp.RemainingAttempts = n
	return &cp
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err. Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}
