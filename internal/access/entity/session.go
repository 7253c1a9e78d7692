package entity

import "time"

// Session is an ephemeral guest credential minted after OTP verification.
// Its resource set is fixed at issuance and it is never extended.
type Session struct {
	ID             int64
	TokenHash      string
	RecipientEmail string
	ResourceIDs    []int64
	IssuedAt       time.Time
	ExpiresAt      time.Time
}

// IsExpiredAt reports whether the session has lapsed at now.
func (s Session) IsExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Covers reports whether the session's fixed access set includes resourceID.
func (s Session) Covers(resourceID int64) bool {
	for _, id := range s.ResourceIDs {
		if id == resourceID {
			return true
		}
	}

	return false
}

// Resource is read-only display metadata attached to access responses.
type Resource struct {
	ID          int64
	Title       string
	Description string
	OwnerID     int64
	CreatedAt   time.Time
}

// GrantResource pairs a grant with the metadata of the resource it covers.
type GrantResource struct {
	Grant    Grant
	Resource Resource
}
