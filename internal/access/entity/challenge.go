package entity

import "time"

// Challenge is a one-time code issued to prove control of an email address.
// The plaintext code is never stored, only its salted hash.
type Challenge struct {
	ID             int64
	RecipientEmail string
	Purpose        ChallengePurpose
	CodeHash       string
	Status         ChallengeStatus
	AttemptsUsed   int32
	MaxAttempts    int32
	CreatedAt      time.Time
	ExpiresAt      time.Time
}

// IsExpiredAt reports whether the TTL has elapsed at now. Expiry is decided
// lazily at verify time by comparing the stored deadline to the clock, there
// is no background sweep.
func (c Challenge) IsExpiredAt(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
