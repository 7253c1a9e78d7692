package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

type ChallengeIssueInput struct {
	Email   string `validate:"required,email"`
	Purpose string `validate:"required,oneof=password-reset guest-access"`
}

type ChallengeIssueOutput struct {
	ChallengeID      int64
	ExpiresInSeconds int64
}

// ChallengeIssue creates a fresh one-time code challenge for (email, purpose).
// It never reveals whether the email is known to the system: issuance always
// succeeds with the same shape, and code delivery is handled downstream.
func (s *Usecase) ChallengeIssue(ctx context.Context, in ChallengeIssueInput) (*ChallengeIssueOutput, error) {
	ctx, span := s.startSpan(ctx, "ChallengeIssue")
	defer span.End()

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	return s.issueChallenge(ctx, in.Email, entity.ChallengePurposeFromString(in.Purpose))
}

// issueChallenge is the shared issuance path for first issues and resends.
// The throttle claim and the supersede-then-insert both happen before the
// caller sees a challenge id, so two concurrent calls cannot both win.
func (s *Usecase) issueChallenge(ctx context.Context, email string, purpose entity.ChallengePurpose) (*ChallengeIssueOutput, error) {
	cooldown := s.cfg.GetSecond("modules.access.resend_cooldown_seconds")

	res, err := s.throttle.Allow(ctx, "access:issue:"+email+":"+purpose.String(), cooldown)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check issue throttle", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !res.Allowed {
		slog.WarnContext(ctx, "challenge issuance throttled", "email", email, "purpose", purpose.String())
		return nil, goerror.NewThrottled(res.RetryAfter)
	}

	code, err := s.code.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate one-time code", "error", err)
		return nil, goerror.NewServer(err)
	}

	codeHash, err := s.argon2id.Hash(code)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash one-time code", "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()
	ttl := s.cfg.GetSecond("modules.access.challenge_ttl_seconds")

	ch := entity.Challenge{
		ID:             s.uid.Generate(),
		RecipientEmail: email,
		Purpose:        purpose,
		CodeHash:       string(codeHash),
		Status:         entity.ChallengeStatusPending,
		AttemptsUsed:   0,
		MaxAttempts:    s.cfg.GetInt32("modules.access.max_attempts"),
		CreatedAt:      now,
		ExpiresAt:      now.Add(ttl),
	}

	if err := s.repoDB.NewChallenge(ctx, ch); err != nil {
		slog.ErrorContext(ctx, "failed to repo create challenge", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	expiresIn := int64(ttl.Seconds())

	if err := s.repoMessaging.PublishChallengeIssued(ctx, ChallengeIssuedEvent{
		ChallengeID:      ch.ID,
		RecipientEmail:   email,
		Purpose:          purpose,
		Code:             code,
		ExpiresInSeconds: expiresIn,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish challenge issued", "challenge_id", ch.ID, "error", err)
	}

	return &ChallengeIssueOutput{
		ChallengeID:      ch.ID,
		ExpiresInSeconds: expiresIn,
	}, nil
}
