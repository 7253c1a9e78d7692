package entity

import (
	"time"

	"github.com/reportgate/reportgate/internal/pkg/valueobject"
)

type DeliveryStatus int16

const (
	DeliveryStatusUnknown DeliveryStatus = 0
	DeliveryStatusQueued  DeliveryStatus = 1
	DeliveryStatusSent    DeliveryStatus = 2
	DeliveryStatusFailed  DeliveryStatus = 3
)

func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryStatusQueued:
		return "Queued"
	case DeliveryStatusSent:
		return "Sent"
	case DeliveryStatusFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Delivery is one attempt record for an outbound message. Issuance of the
// underlying challenge never depends on it; failures land here instead of
// failing the caller.
type Delivery struct {
	ID               int64
	RecipientEmail   string
	Purpose          string
	Subject          string
	Status           DeliveryStatus
	Attempts         int32
	ProviderResponse valueobject.JSONMap
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type CreateDelivery struct {
	ID             int64
	RecipientEmail string
	Purpose        string
	Subject        string
	Status         DeliveryStatus
}

type UpdateDelivery struct {
	ID               int64
	Status           DeliveryStatus
	Attempts         int32
	ProviderResponse valueobject.JSONMap
}
