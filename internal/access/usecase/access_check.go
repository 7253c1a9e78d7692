package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

type AccessCheckInput struct {
	SessionToken string `validate:"required"`
	ResourceID   int64  `validate:"required"`
}

type AccessCheckOutput struct {
	Decision entity.AccessDecision
	// Resource is populated only when the decision is Allowed.
	Resource *entity.Resource
	// Remaining is the time left on the backing grant when Allowed.
	Remaining entity.Remaining
}

// AccessCheck is the single point of truth consulted before serving a
// resource to a guest. The session only fixes resource identity and email;
// grant status is always re-derived live, never cached on the session.
// Checks run most specific first: NotFound, then Revoked, then Expired.
func (s *Usecase) AccessCheck(ctx context.Context, in AccessCheckInput) (*AccessCheckOutput, error) {
	ctx, span := s.startSpan(ctx, "AccessCheck")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.resolveSession(ctx, in.SessionToken)
	if err != nil {
		return nil, err
	}

	if !sess.Covers(in.ResourceID) {
		return &AccessCheckOutput{Decision: entity.AccessDecisionNotFound}, nil
	}

	grant, err := s.repoDB.GetGrantForResource(ctx, sess.RecipientEmail, in.ResourceID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &AccessCheckOutput{Decision: entity.AccessDecisionNotFound}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get grant for resource",
			"resource_id", in.ResourceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	switch grant.StatusAt(now) {
	case entity.GrantStatusRevoked:
		return &AccessCheckOutput{Decision: entity.AccessDecisionRevoked}, nil
	case entity.GrantStatusExpired:
		return &AccessCheckOutput{Decision: entity.AccessDecisionExpired}, nil
	}

	res, err := s.repoDB.GetResourceByID(ctx, in.ResourceID)
	if errors.Is(err, goerror.ErrNotFound) {
		return &AccessCheckOutput{Decision: entity.AccessDecisionNotFound}, nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get resource by id", "resource_id", in.ResourceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if err := s.repoDB.IncrementGrantViewCount(ctx, grant.ID); err != nil {
		slog.ErrorContext(ctx, "failed to repo increment grant view count", "grant_id", grant.ID, "error", err)
	}

	return &AccessCheckOutput{
		Decision:  entity.AccessDecisionAllowed,
		Resource:  res,
		Remaining: grant.RemainingAt(now),
	}, nil
}
