package inbound

import (
	"context"

	"github.com/reportgate/reportgate/internal/notification/usecase"
	"github.com/reportgate/reportgate/internal/pkg/router"
)

type uc interface {
	ConsumeChallengeIssued(ctx context.Context, in usecase.ConsumeChallengeIssuedInput) error
	ListDeliveries(ctx context.Context, in usecase.ListDeliveriesInput) (*usecase.ListDeliveriesOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Delivery log (need authenticated)
	r.GET("/api/v1/notifications/deliveries", end.ListDeliveries)
}
