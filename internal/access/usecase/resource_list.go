package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

type ResourceListInput struct {
	RecipientEmail string `validate:"required,email"`
}

type ResourceEntry struct {
	ResourceID  int64
	Title       string
	Description string
	GrantID     int64
	Status      entity.GrantStatus
	Remaining   entity.Remaining
	ExpiresAt   *time.Time
	ViewCount   int64
}

type ResourceListOutput struct {
	Resources []ResourceEntry
}

// ResourceList enumerates the resources shared with a recipient, with each
// grant's derived status and remaining time. Expired entries are included so
// callers can render "access expired" instead of "not found"; revoked entries
// are not.
func (s *Usecase) ResourceList(ctx context.Context, in ResourceListInput) (*ResourceListOutput, error) {
	ctx, span := s.startSpan(ctx, "ResourceList")
	defer span.End()

	if _, err := s.authenticatedAndAuthorized(ctx, "access:grants", "read"); err != nil {
		return nil, err
	}

	in.RecipientEmail = strings.TrimSpace(strings.ToLower(in.RecipientEmail))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	entries, err := s.authorizeGrants(ctx, in.RecipientEmail)
	if err != nil {
		return nil, err
	}

	return &ResourceListOutput{Resources: entries}, nil
}

type GuestResourceListInput struct {
	SessionToken string `validate:"required"`
}

// GuestResourceList is the guest-facing variant of ResourceList, scoped to
// the email bound to a live guest session.
//
// The list enumerates grants by email, while the session carries a fixed
// resource set from issuance time. A grant created after the session was
// minted therefore shows up here but fails AccessCheck until the guest
// verifies again and receives a session covering it.
func (s *Usecase) GuestResourceList(ctx context.Context, in GuestResourceListInput) (*ResourceListOutput, error) {
	ctx, span := s.startSpan(ctx, "GuestResourceList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	sess, err := s.resolveSession(ctx, in.SessionToken)
	if err != nil {
		return nil, err
	}

	entries, err := s.authorizeGrants(ctx, sess.RecipientEmail)
	if err != nil {
		return nil, err
	}

	return &ResourceListOutput{Resources: entries}, nil
}

func (s *Usecase) authorizeGrants(ctx context.Context, email string) ([]ResourceEntry, error) {
	grants, err := s.repoDB.GetGrantsByRecipient(ctx, email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get grants by recipient", "email", email, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	entries := make([]ResourceEntry, 0, len(grants))
	for _, gr := range grants {
		status := gr.Grant.StatusAt(now)
		if status == entity.GrantStatusRevoked {
			continue
		}

		entries = append(entries, ResourceEntry{
			ResourceID:  gr.Resource.ID,
			Title:       gr.Resource.Title,
			Description: gr.Resource.Description,
			GrantID:     gr.Grant.ID,
			Status:      status,
			Remaining:   gr.Grant.RemainingAt(now),
			ExpiresAt:   gr.Grant.ExpiresAt,
			ViewCount:   gr.Grant.ViewCount,
		})
	}

	return entries, nil
}
