package model

import "time"

// ChallengeKind tells what a pending one-time code authorizes.
type ChallengeKind string

const (
	ChallengeMFA   ChallengeKind = "mfa"
	ChallengeReset ChallengeKind = "reset"
)

// Challenge is a short-lived single-use code. Only the digest of the code is
// stored.
type Challenge struct {
	Kind      ChallengeKind `bson:"kind"`
	Digest    string        `bson:"digest"`
	ExpiresAt time.Time     `bson:"expires_at"`
	Attempts  int           `bson:"attempts"`
}

// Expired reports whether the challenge can no longer be redeemed at now.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
