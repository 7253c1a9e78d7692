package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

type GrantRevokeInput struct {
	GrantID int64 `validate:"required"`
}

// GrantRevoke terminates a grant immediately, independent of its time-based
// expiry. Once revoked a grant never becomes active again.
func (s *Usecase) GrantRevoke(ctx context.Context, in GrantRevokeInput) error {
	ctx, span := s.startSpan(ctx, "GrantRevoke")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, "access:grants", "delete")
	if err != nil {
		return err
	}

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	ok, err := s.repoDB.RevokeGrant(ctx, in.GrantID, s.clock.Now())
	if errors.Is(err, goerror.ErrNotFound) {
		return goerror.NewBusiness("Grant not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo revoke grant", "grant_id", in.GrantID, "user_id", clm.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if !ok {
		// Already revoked, the outcome the caller wanted.
		slog.WarnContext(ctx, "grant already revoked", "grant_id", in.GrantID)
	}

	return nil
}
