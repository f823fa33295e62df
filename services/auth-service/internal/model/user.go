package model

import (
	"time"
)

// User represents a user in the authentication system.
type User struct {
	ID              string     `bson:"_id,omitempty"`
	Email           string     `bson:"email"`
	PasswordHash    string     `bson:"password_hash"`
	FailedAttempts  int        `bson:"failed_attempts"`
	LockUntil       *time.Time `bson:"lock_until,omitempty"`
	IsMFAEnabled    bool       `bson:"is_mfa_enabled"`
	MFAChallenge    *Challenge `bson:"mfa_challenge,omitempty"`
	ResetChallenge  *Challenge `bson:"reset_challenge,omitempty"`
	ActiveSessionID *string    `bson:"active_session_id,omitempty"`
	CreatedAt       time.Time  `bson:"created_at"`
	UpdatedAt       time.Time  `bson:"updated_at"`
}

// IsLocked reports whether the lock is still in force at now.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// HasActiveSession reports whether sessionID is the current session marker.
func (u *User) HasActiveSession(sessionID string) bool {
	return u.ActiveSessionID != nil && sessionID != "" && *u.ActiveSessionID == sessionID
}

// Challenge returns the pending challenge of the given kind, or nil.
func (u *User) Challenge(kind ChallengeKind) *Challenge {
	switch kind {
	case ChallengeMFA:
		return u.MFAChallenge
	case ChallengeReset:
		return u.ResetChallenge
	default:
		return nil
	}
}

// SetChallenge stores c in the slot for its kind, replacing any earlier
// challenge of the same kind only.
func (u *User) SetChallenge(c *Challenge) {
	switch c.Kind {
	case ChallengeMFA:
		u.MFAChallenge = c
	case ChallengeReset:
		u.ResetChallenge = c
	}
}

// ClearChallenge removes the pending challenge of the given kind.
func (u *User) ClearChallenge(kind ChallengeKind) {
	switch kind {
	case ChallengeMFA:
		u.MFAChallenge = nil
	case ChallengeReset:
		u.ResetChallenge = nil
	}
}
