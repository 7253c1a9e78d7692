package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reportgate/reportgate/internal/notification/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/reportgate/reportgate/internal/pkg/jwt"
)

type ListDeliveriesInput struct {
	RecipientEmail string `validate:"omitempty,email"`
	Limit          int32  `validate:"gte=0,lte=100"`
	Offset         int32  `validate:"gte=0"`
}

type ListDeliveriesOutput struct {
	Deliveries []entity.Delivery
}

// ListDeliveries returns the delivery log for operators, newest first.
func (s *Usecase) ListDeliveries(ctx context.Context, in ListDeliveriesInput) (*ListDeliveriesOutput, error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer span.End()

	if jwt.GetAuth(ctx) == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	in.RecipientEmail = strings.TrimSpace(strings.ToLower(in.RecipientEmail))

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Limit == 0 {
		in.Limit = 20
	}

	items, err := s.repoDB.ListDeliveries(ctx, in.RecipientEmail, in.Limit, in.Offset)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo list deliveries", "error", err)
		return nil, goerror.NewServer(err)
	}

	return &ListDeliveriesOutput{Deliveries: items}, nil
}
