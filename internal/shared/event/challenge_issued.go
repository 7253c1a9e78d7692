package event

const ChallengeIssuedDestination string = "access_challenge_issued"
const ChallengeIssuedDestinationConsumerNotification string = "access_challenge_issued_notification"

type ChallengeIssuedMessage struct {
	ChallengeID      int64  `json:"challenge_id"`
	RecipientEmail   string `json:"recipient_email"`
	Purpose          string `json:"purpose"`
	Code             string `json:"code"`
	ExpiresInSeconds int64  `json:"expires_in_seconds"`
}
