package entity

type ChallengePurpose int16

const (
	ChallengePurposeUnknown       ChallengePurpose = 0
	ChallengePurposePasswordReset ChallengePurpose = 1
	ChallengePurposeGuestAccess   ChallengePurpose = 2
)

func (p ChallengePurpose) String() string {
	switch p {
	case ChallengePurposePasswordReset:
		return "password-reset"
	case ChallengePurposeGuestAccess:
		return "guest-access"
	default:
		return "unknown"
	}
}

func (p ChallengePurpose) IsUnknown() bool {
	switch p {
	case ChallengePurposePasswordReset, ChallengePurposeGuestAccess:
		return false
	default:
		return true
	}
}

func ChallengePurposeFromString(s string) ChallengePurpose {
	switch s {
	case "password-reset":
		return ChallengePurposePasswordReset
	case "guest-access":
		return ChallengePurposeGuestAccess
	default:
		return ChallengePurposeUnknown
	}
}

type ChallengeStatus int16

const (
	ChallengeStatusUnknown ChallengeStatus = 0

	// ChallengeStatusPending mean the challenge is live and accepting verify attempts.
	ChallengeStatusPending ChallengeStatus = 1

	// ChallengeStatusVerified mean the code was matched. Terminal.
	ChallengeStatusVerified ChallengeStatus = 2

	// ChallengeStatusExpired mean the TTL elapsed or a newer challenge superseded it. Terminal.
	ChallengeStatusExpired ChallengeStatus = 3

	// ChallengeStatusExhausted mean the attempt budget was spent. Terminal.
	ChallengeStatusExhausted ChallengeStatus = 4
)

func (s ChallengeStatus) String() string {
	switch s {
	case ChallengeStatusPending:
		return "Pending"
	case ChallengeStatusVerified:
		return "Verified"
	case ChallengeStatusExpired:
		return "Expired"
	case ChallengeStatusExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether the status can never transition again.
func (s ChallengeStatus) IsTerminal() bool {
	switch s {
	case ChallengeStatusVerified, ChallengeStatusExpired, ChallengeStatusExhausted:
		return true
	default:
		return false
	}
}

// VerifyStatus is the outcome of a verify attempt.
type VerifyStatus int16

const (
	VerifyStatusNotFound    VerifyStatus = 0
	VerifyStatusValid       VerifyStatus = 1
	VerifyStatusInvalidCode VerifyStatus = 2
	VerifyStatusExpired     VerifyStatus = 3
	VerifyStatusExhausted   VerifyStatus = 4
)

func (s VerifyStatus) String() string {
	switch s {
	case VerifyStatusValid:
		return "Valid"
	case VerifyStatusInvalidCode:
		return "InvalidCode"
	case VerifyStatusExpired:
		return "Expired"
	case VerifyStatusExhausted:
		return "Exhausted"
	default:
		return "NotFound"
	}
}

// GrantStatus is derived from grant fields and the current time, never stored.
type GrantStatus int16

const (
	GrantStatusActive  GrantStatus = 1
	GrantStatusExpired GrantStatus = 2
	GrantStatusRevoked GrantStatus = 3
)

func (s GrantStatus) String() string {
	switch s {
	case GrantStatusActive:
		return "Active"
	case GrantStatusExpired:
		return "Expired"
	case GrantStatusRevoked:
		return "Revoked"
	default:
		return "Unknown"
	}
}

// AccessDecision is the outcome of a per-resource access check.
type AccessDecision int16

const (
	AccessDecisionNotFound AccessDecision = 0
	AccessDecisionAllowed  AccessDecision = 1
	AccessDecisionExpired  AccessDecision = 2
	AccessDecisionRevoked  AccessDecision = 3
)

func (d AccessDecision) String() string {
	switch d {
	case AccessDecisionAllowed:
		return "Allowed"
	case AccessDecisionExpired:
		return "Expired"
	case AccessDecisionRevoked:
		return "Revoked"
	default:
		return "NotFound"
	}
}
