package inbound

import (
	"time"

	"github.com/reportgate/reportgate/internal/notification/entity"
	"github.com/reportgate/reportgate/internal/notification/usecase"
	"github.com/reportgate/reportgate/internal/pkg/router"
	"github.com/samber/lo"
)

// HTTPEndpoint exposes HTTP handlers for the delivery log.
type HTTPEndpoint struct {
	uc uc
}

type DeliveryResponse struct {
	ID             int64     `json:"id,string"`
	RecipientEmail string    `json:"recipient_email"`
	Purpose        string    `json:"purpose"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status" enums:"Queued,Sent,Failed"`
	Attempts       int32     `json:"attempts"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ListDeliveriesResponse struct {
	Deliveries []DeliveryResponse `json:"deliveries"`
}

// ListDeliveries lists outbound message delivery attempts.
// @Summary List deliveries
// @Description Returns the delivery log, optionally filtered by recipient email.
// @Tags Notification
// @Produce json
// @Security BearerAuth
// @Param recipient_email query string false "Recipient email filter"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} router.successResponse{data=ListDeliveriesResponse} "Delivery log"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/notifications/deliveries [get]
func (h *HTTPEndpoint) ListDeliveries(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	offset, err := r.GetQueryInt32("offset")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListDeliveries(r.Context(), usecase.ListDeliveriesInput{
		RecipientEmail: r.GetQuery("recipient_email"),
		Limit:          limit,
		Offset:         offset,
	})
	if err != nil {
		return nil, err
	}

	return ListDeliveriesResponse{
		Deliveries: lo.Map(resp.Deliveries, func(d entity.Delivery, _ int) DeliveryResponse {
			return DeliveryResponse{
				ID:             d.ID,
				RecipientEmail: d.RecipientEmail,
				Purpose:        d.Purpose,
				Subject:        d.Subject,
				Status:         d.Status.String(),
				Attempts:       d.Attempts,
				CreatedAt:      d.CreatedAt,
				UpdatedAt:      d.UpdatedAt,
			}
		}),
	}, nil
}
