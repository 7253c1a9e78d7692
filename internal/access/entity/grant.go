package entity

import (
	"fmt"
	"time"
)

// Grant gives one recipient timed or unlimited access to one resource.
//
// Its status is never stored. Every read derives it from the stored fields
// and the current time so the apparent status cannot outlive a clock check.
type Grant struct {
	ID             int64
	ResourceID     int64
	RecipientEmail string
	CreatedAt      time.Time
	// ExpiresAt is nil for unlimited grants.
	ExpiresAt    *time.Time
	RevokedAt    *time.Time
	SupersededAt *time.Time
	ViewCount    int64
}

// IsUnlimited reports whether the grant never expires by time.
func (g Grant) IsUnlimited() bool {
	return g.ExpiresAt == nil
}

// StatusAt derives the grant status at now. Revocation wins over time
// expiry, and the expiry boundary is exclusive: a finite grant is Active
// strictly before its deadline and Expired from the exact instant on.
func (g Grant) StatusAt(now time.Time) GrantStatus {
	if g.RevokedAt != nil {
		return GrantStatusRevoked
	}

	if g.ExpiresAt == nil {
		return GrantStatusActive
	}

	if now.Before(*g.ExpiresAt) {
		return GrantStatusActive
	}

	return GrantStatusExpired
}

// Remaining is the floor-truncated time left on a grant.
type Remaining struct {
	Unlimited bool
	Expired   bool
	Days      int
	Hours     int
}

func (r Remaining) String() string {
	if r.Unlimited {
		return "Unlimited"
	}
	if r.Expired {
		return "Expired"
	}

	return fmt.Sprintf("%d days %d hours", r.Days, r.Hours)
}

// RemainingAt computes the time left at now, floored to whole units, so
// 29.9 days left reports 29 days.
func (g Grant) RemainingAt(now time.Time) Remaining {
	switch g.StatusAt(now) {
	case GrantStatusActive:
		if g.ExpiresAt == nil {
			return Remaining{Unlimited: true}
		}

		left := g.ExpiresAt.Sub(now)
		hours := int(left.Hours())

		return Remaining{Days: hours / 24, Hours: hours % 24}

	default:
		return Remaining{Expired: true}
	}
}
