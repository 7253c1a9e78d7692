package inbound

import "time"

// headerGuestToken carries the opaque guest session token on guest endpoints.
const headerGuestToken = "X-Guest-Token"

type ChallengeIssueRequest struct {
	Email   string `json:"email"`
	Purpose string `json:"purpose" enums:"password-reset,guest-access"`
}

type ChallengeIssueResponse struct {
	ChallengeID      int64 `json:"challenge_id,string"`
	ExpiresInSeconds int64 `json:"expires_in_seconds"`
}

type ChallengeResendRequest struct {
	ChallengeID int64 `json:"challenge_id,string"`
}

type ChallengeVerifyRequest struct {
	ChallengeID int64  `json:"challenge_id,string"`
	Code        string `json:"code"`
}

type ChallengeVerifyResponse struct {
	Status           string     `json:"status" enums:"Valid,InvalidCode,Expired,Exhausted,NotFound"`
	SessionToken     string     `json:"session_token,omitempty"`
	SessionExpiresAt *time.Time `json:"session_expires_at,omitempty"`
}

type GrantCreateRequest struct {
	ResourceID     int64  `json:"resource_id,string"`
	RecipientEmail string `json:"recipient_email"`
	// DurationDays is omitted or null for an unlimited grant.
	DurationDays *int `json:"duration_days"`
}

type GrantCreateResponse struct {
	GrantID   int64      `json:"grant_id,string"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type GrantRevokeResponse struct{}

type RemainingResponse struct {
	Unlimited bool `json:"unlimited"`
	Expired   bool `json:"expired"`
	Days      int  `json:"days"`
	Hours     int  `json:"hours"`
}

type ResourceEntryResponse struct {
	ResourceID  int64             `json:"resource_id,string"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	GrantID     int64             `json:"grant_id,string"`
	Status      string            `json:"status" enums:"Active,Expired"`
	Remaining   RemainingResponse `json:"remaining"`
	ExpiresAt   *time.Time        `json:"expires_at"`
	ViewCount   int64             `json:"view_count"`
}

type ResourceListResponse struct {
	Resources []ResourceEntryResponse `json:"resources"`
}

type GuestResourceDetailResponse struct {
	Decision    string            `json:"decision" enums:"Allowed,Expired,Revoked,NotFound"`
	ResourceID  int64             `json:"resource_id,string,omitempty"`
	Title       string            `json:"title,omitempty"`
	Description string            `json:"description,omitempty"`
	Remaining   RemainingResponse `json:"remaining"`
}
