package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/samber/lo"
)

type GrantCreateInput struct {
	ResourceID     int64  `validate:"required"`
	RecipientEmail string `validate:"required,email"`
	// DurationDays is nil for an unlimited grant.
	DurationDays *int
}

type GrantCreateOutput struct {
	GrantID   int64
	ExpiresAt *time.Time
}

// GrantCreate shares a resource with a recipient for a fixed number of days
// or indefinitely. A new grant for the same (resource, recipient) pair
// replaces the previous one rather than accumulating.
func (s *Usecase) GrantCreate(ctx context.Context, in GrantCreateInput) (*GrantCreateOutput, error) {
	ctx, span := s.startSpan(ctx, "GrantCreate")
	defer span.End()

	clm, err := s.authenticatedAndAuthorized(ctx, "access:grants", "create")
	if err != nil {
		return nil, err
	}

	in.RecipientEmail = strings.TrimSpace(strings.ToLower(in.RecipientEmail))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.DurationDays != nil {
		allowed := lo.Map(s.cfg.GetArray("modules.access.grant_duration_days"), func(v string, _ int) int {
			n, _ := strconv.Atoi(v)
			return n
		})
		if !lo.Contains(allowed, *in.DurationDays) {
			return nil, goerror.NewInvalidInput(nil, "duration_days", "duration_days is not an allowed option")
		}
	}

	res, err := s.repoDB.GetResourceByID(ctx, in.ResourceID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "resource not found for grant", "resource_id", in.ResourceID)
		return nil, goerror.NewBusiness("Resource not found", goerror.CodeNotFound)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get resource by id", "resource_id", in.ResourceID, "error", err)
		return nil, goerror.NewServer(err)
	}

	now := s.clock.Now()

	var expiresAt *time.Time
	if in.DurationDays != nil {
		t := now.Add(time.Duration(*in.DurationDays) * 24 * time.Hour)
		expiresAt = &t
	}

	g := entity.Grant{
		ID:             s.uid.Generate(),
		ResourceID:     res.ID,
		RecipientEmail: in.RecipientEmail,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}

	if err := s.repoDB.NewGrant(ctx, g); err != nil {
		slog.ErrorContext(ctx, "failed to repo create grant",
			"resource_id", res.ID, "recipient", in.RecipientEmail, "user_id", clm.UserID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &GrantCreateOutput{GrantID: g.ID, ExpiresAt: expiresAt}, nil
}
