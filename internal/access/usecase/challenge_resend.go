package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

type ChallengeResendInput struct {
	ChallengeID int64 `validate:"required"`
}

// ChallengeResend issues a new code for the same (email, purpose) as an
// earlier challenge. The new challenge supersedes the old one, so the old
// code stops verifying even if it was correct before.
func (s *Usecase) ChallengeResend(ctx context.Context, in ChallengeResendInput) (*ChallengeIssueOutput, error) {
	ctx, span := s.startSpan(ctx, "ChallengeResend")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ch, err := s.repoDB.GetChallengeByID(ctx, in.ChallengeID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "challenge not found for resend", "challenge_id", in.ChallengeID)
		return nil, goerror.NewBusiness("Challenge not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge by id", "challenge_id", in.ChallengeID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return s.issueChallenge(ctx, ch.RecipientEmail, ch.Purpose)
}
