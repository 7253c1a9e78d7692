package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

type ChallengeVerifyInput struct {
	ChallengeID int64  `validate:"required"`
	Code        string `validate:"required,otpcode"`
}

type ChallengeVerifyOutput struct {
	Status           entity.VerifyStatus
	SessionToken     string
	SessionExpiresAt *time.Time
}

// ChallengeVerify checks a submitted code against a pending challenge.
//
// Terminal challenges always answer NotFound, so a code that already
// succeeded once can never be replayed. Expiry is decided here by comparing
// the stored deadline to the clock. For guest-access challenges a successful
// verify also mints a guest session.
func (s *Usecase) ChallengeVerify(ctx context.Context, in ChallengeVerifyInput) (*ChallengeVerifyOutput, error) {
	ctx, span := s.startSpan(ctx, "ChallengeVerify")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ch, err := s.repoDB.GetChallengeByID(ctx, in.ChallengeID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &ChallengeVerifyOutput{Status: entity.VerifyStatusNotFound}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get challenge by id", "challenge_id", in.ChallengeID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if ch.Status != entity.ChallengeStatusPending {
		return &ChallengeVerifyOutput{Status: entity.VerifyStatusNotFound}, nil
	}

	if ch.IsExpiredAt(s.clock.Now()) {
		if _, err := s.repoDB.MarkChallengeExpired(ctx, ch.ID); err != nil {
			slog.ErrorContext(ctx, "failed to repo mark challenge expired", "challenge_id", ch.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		return &ChallengeVerifyOutput{Status: entity.VerifyStatusExpired}, nil
	}

	if !s.argon2id.Verify(ch.CodeHash, in.Code) {
		after, err := s.repoDB.RecordFailedAttempt(ctx, ch.ID)
		if errors.Is(err, goerror.ErrNotFound) {
			// A concurrent verify or resend already moved the challenge
			// to a terminal status.
			return &ChallengeVerifyOutput{Status: entity.VerifyStatusNotFound}, nil
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to repo record failed attempt", "challenge_id", ch.ID, "error", err)
			return nil, goerror.NewServer(err)
		}

		if after.Status == entity.ChallengeStatusExhausted {
			slog.WarnContext(ctx, "challenge attempts exhausted", "challenge_id", ch.ID)
			return &ChallengeVerifyOutput{Status: entity.VerifyStatusExhausted}, nil
		}

		return &ChallengeVerifyOutput{Status: entity.VerifyStatusInvalidCode}, nil
	}

	ok, err := s.repoDB.MarkChallengeVerified(ctx, ch.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mark challenge verified", "challenge_id", ch.ID, "error", err)
		return nil, goerror.NewServer(err)
	}
	if !ok {
		// Lost the race against another transition, the code is spent.
		return &ChallengeVerifyOutput{Status: entity.VerifyStatusNotFound}, nil
	}

	out := &ChallengeVerifyOutput{Status: entity.VerifyStatusValid}

	if ch.Purpose == entity.ChallengePurposeGuestAccess {
		token, expiresAt, err := s.issueGuestSession(ctx, ch.RecipientEmail)
		if err != nil {
			return nil, err
		}

		out.SessionToken = token
		out.SessionExpiresAt = &expiresAt
	}

	return out, nil
}

// issueGuestSession mints a session whose resource set is the recipient's
// currently Active grants and whose lifetime is the shortest remaining grant
// expiry, defaulted when every grant is unlimited and always capped by the
// hard maximum. The set is fixed at issuance and never refreshed.
func (s *Usecase) issueGuestSession(ctx context.Context, email string) (string, time.Time, error) {
	grants, err := s.repoDB.GetGrantsByRecipient(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get grants by recipient", "email", email, "error", err)
		return "", time.Time{}, goerror.NewServer(err)
	}

	now := s.clock.Now()

	var minGrantExpiry *time.Time
	resourceIDs := make([]int64, 0, len(grants))
	for _, gr := range grants {
		if gr.Grant.StatusAt(now) != entity.GrantStatusActive {
			continue
		}

		resourceIDs = append(resourceIDs, gr.Grant.ResourceID)
		if !gr.Grant.IsUnlimited() && (minGrantExpiry == nil || gr.Grant.ExpiresAt.Before(*minGrantExpiry)) {
			minGrantExpiry = gr.Grant.ExpiresAt
		}
	}

	// Unlimited resource access must not imply unlimited session lifetime.
	expiresAt := now.Add(s.cfg.GetMinute("modules.access.session_ttl_minutes"))
	if minGrantExpiry != nil {
		expiresAt = *minGrantExpiry
	}
	if hardCap := now.Add(s.cfg.GetHour("modules.access.session_max_hours")); expiresAt.After(hardCap) {
		expiresAt = hardCap
	}

	token := s.oid.Generate()
	tokenHash, err := s.hmac.Hash(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash session token", "error", err)
		return "", time.Time{}, goerror.NewServer(err)
	}

	if err := s.repoDB.NewSession(ctx, entity.Session{
		ID:             s.uid.Generate(),
		TokenHash:      string(tokenHash),
		RecipientEmail: email,
		ResourceIDs:    resourceIDs,
		IssuedAt:       now,
		ExpiresAt:      expiresAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create session", "email", email, "error", err)
		return "", time.Time{}, goerror.NewServer(err)
	}

	return token, expiresAt, nil
}
