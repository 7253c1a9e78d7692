package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/reportgate/reportgate/internal/notification/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/reportgate/reportgate/internal/pkg/jwt"
)

func TestListDeliveries(t *testing.T) {
	authed := jwt.SetAuth(context.Background(), jwt.Claims{UserID: 7})

	t.Run("Success", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{listed: []entity.Delivery{
			{ID: 1, RecipientEmail: "guest@example.com", Status: entity.DeliveryStatusSent},
		}}
		uc := newTestUsecase(t, db, &fakeMail{})

		// Act
		out, err := uc.ListDeliveries(authed, ListDeliveriesInput{RecipientEmail: "guest@example.com"})

		// Assert
		if err != nil {
			t.Fatalf("list deliveries failed: %v", err)
		}
		if len(out.Deliveries) != 1 || out.Deliveries[0].ID != 1 {
			t.Fatalf("unexpected deliveries %+v", out.Deliveries)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, &fakeRepoDB{}, &fakeMail{})

		// Act
		_, err := uc.ListDeliveries(context.Background(), ListDeliveriesInput{})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	})

	t.Run("RepoFailure", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{listErr: errors.New("db down")}
		uc := newTestUsecase(t, db, &fakeMail{})

		// Act
		_, err := uc.ListDeliveries(authed, ListDeliveriesInput{})

		// Assert
		if err == nil {
			t.Fatalf("expected an error from a repo failure")
		}
	})
}
