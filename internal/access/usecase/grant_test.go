package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

func TestGrantCreate(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	enforcer := func(t *testing.T) usecaseOption {
		return withEnforcer(newTestEnforcer(t, []string{"42", "access:grants", "create"}))
	}

	t.Run("TimedGrant", func(t *testing.T) {
		// Arrange
		var created entity.Grant
		db := &fakeRepoDB{
			getResourceByID: func(_ context.Context, id int64) (*entity.Resource, error) {
				return &entity.Resource{ID: id, Title: "Q1 Report"}, nil
			},
			newGrant: func(_ context.Context, g entity.Grant) error {
				created = g
				return nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now), enforcer(t))
		days := 30

		// Act
		out, err := uc.GrantCreate(authedContext("42"), GrantCreateInput{
			ResourceID:     100,
			RecipientEmail: "Guest@Example.com",
			DurationDays:   &days,
		})

		// Assert
		if err != nil {
			t.Fatalf("grant create failed: %v", err)
		}
		if out.ExpiresAt == nil || !out.ExpiresAt.Equal(now.Add(30*24*time.Hour)) {
			t.Fatalf("expected expiry 30 days out, got %v", out.ExpiresAt)
		}
		if created.RecipientEmail != "guest@example.com" {
			t.Fatalf("expected normalized email, got %q", created.RecipientEmail)
		}
	})

	t.Run("UnlimitedGrant", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getResourceByID: func(_ context.Context, id int64) (*entity.Resource, error) {
				return &entity.Resource{ID: id}, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now), enforcer(t))

		// Act
		out, err := uc.GrantCreate(authedContext("42"), GrantCreateInput{
			ResourceID:     100,
			RecipientEmail: "guest@example.com",
		})

		// Assert
		if err != nil {
			t.Fatalf("grant create failed: %v", err)
		}
		if out.ExpiresAt != nil {
			t.Fatalf("expected no expiry on an unlimited grant, got %v", out.ExpiresAt)
		}
	})

	t.Run("DurationOutsideAllowedOptions", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, withClock(now), enforcer(t))
		days := 13

		// Act
		_, err := uc.GrantCreate(authedContext("42"), GrantCreateInput{
			ResourceID:     100,
			RecipientEmail: "guest@example.com",
			DurationDays:   &days,
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeInvalidInput {
			t.Fatalf("expected invalid input error, got %v", err)
		}
	})

	t.Run("ResourceNotFound", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, withClock(now), enforcer(t))

		// Act
		_, err := uc.GrantCreate(authedContext("42"), GrantCreateInput{
			ResourceID:     404,
			RecipientEmail: "guest@example.com",
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, enforcer(t))

		// Act
		_, err := uc.GrantCreate(context.Background(), GrantCreateInput{
			ResourceID:     100,
			RecipientEmail: "guest@example.com",
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	})

	t.Run("Forbidden", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, enforcer(t))

		// Act
		_, err := uc.GrantCreate(authedContext("99"), GrantCreateInput{
			ResourceID:     100,
			RecipientEmail: "guest@example.com",
		})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeForbidden {
			t.Fatalf("expected forbidden error, got %v", err)
		}
	})
}

func TestGrantRevoke(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	enforcer := func(t *testing.T) usecaseOption {
		return withEnforcer(newTestEnforcer(t, []string{"42", "access:grants", "delete"}))
	}

	t.Run("Success", func(t *testing.T) {
		// Arrange
		var revokedAt time.Time
		db := &fakeRepoDB{
			revokeGrant: func(_ context.Context, _ int64, at time.Time) (bool, error) {
				revokedAt = at
				return true, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now), enforcer(t))

		// Act
		err := uc.GrantRevoke(authedContext("42"), GrantRevokeInput{GrantID: 10})

		// Assert
		if err != nil {
			t.Fatalf("grant revoke failed: %v", err)
		}
		if !revokedAt.Equal(now) {
			t.Fatalf("expected revocation at %v, got %v", now, revokedAt)
		}
	})

	t.Run("AlreadyRevokedIsIdempotent", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			revokeGrant: func(_ context.Context, _ int64, _ time.Time) (bool, error) {
				return false, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now), enforcer(t))

		// Act
		err := uc.GrantRevoke(authedContext("42"), GrantRevokeInput{GrantID: 10})

		// Assert
		if err != nil {
			t.Fatalf("revoking twice should not fail: %v", err)
		}
	})

	t.Run("GrantNotFound", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			revokeGrant: func(_ context.Context, _ int64, _ time.Time) (bool, error) {
				return false, goerror.ErrNotFound
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now), enforcer(t))

		// Act
		err := uc.GrantRevoke(authedContext("42"), GrantRevokeInput{GrantID: 404})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeNotFound {
			t.Fatalf("expected not found error, got %v", err)
		}
	})
}
