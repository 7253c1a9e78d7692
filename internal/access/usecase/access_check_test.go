package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
)

func liveSession(now time.Time) *entity.Session {
	return &entity.Session{
		ID:             5,
		TokenHash:      "hmac:token-opaque",
		RecipientEmail: "guest@example.com",
		ResourceIDs:    []int64{100},
		IssuedAt:       now.Add(-time.Minute),
		ExpiresAt:      now.Add(time.Hour),
	}
}

func TestAccessCheck(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("Allowed", func(t *testing.T) {
		// Arrange
		expiry := now.Add(26 * time.Hour)
		var viewed int64
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				return liveSession(now), nil
			},
			getGrantForResource: func(_ context.Context, _ string, _ int64) (*entity.Grant, error) {
				return &entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &expiry, ViewCount: 3}, nil
			},
			getResourceByID: func(_ context.Context, id int64) (*entity.Resource, error) {
				return &entity.Resource{ID: id, Title: "Q1 Report"}, nil
			},
			incrementGrantViewCount: func(_ context.Context, id int64) error {
				viewed = id
				return nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 100})

		// Assert
		if err != nil {
			t.Fatalf("access check failed: %v", err)
		}
		if out.Decision != entity.AccessDecisionAllowed {
			t.Fatalf("expected Allowed, got %s", out.Decision)
		}
		if out.Resource == nil || out.Resource.Title != "Q1 Report" {
			t.Fatalf("expected resource metadata, got %+v", out.Resource)
		}
		if out.Remaining.Days != 1 || out.Remaining.Hours != 2 {
			t.Fatalf("expected 1 days 2 hours remaining, got %+v", out.Remaining)
		}
		if viewed != 10 {
			t.Fatalf("expected view count bump on grant 10, got %d", viewed)
		}
	})

	t.Run("ResourceOutsideSessionSet", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				return liveSession(now), nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 999})

		// Assert
		if err != nil {
			t.Fatalf("access check failed: %v", err)
		}
		if out.Decision != entity.AccessDecisionNotFound {
			t.Fatalf("expected NotFound, got %s", out.Decision)
		}
	})

	t.Run("RevokedWinsOverExpired", func(t *testing.T) {
		// Arrange
		lapsed := now.Add(-time.Hour)
		revoked := now.Add(-2 * time.Hour)
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				return liveSession(now), nil
			},
			getGrantForResource: func(_ context.Context, _ string, _ int64) (*entity.Grant, error) {
				return &entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &lapsed, RevokedAt: &revoked}, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 100})

		// Assert
		if err != nil {
			t.Fatalf("access check failed: %v", err)
		}
		if out.Decision != entity.AccessDecisionRevoked {
			t.Fatalf("expected Revoked, got %s", out.Decision)
		}
	})

	t.Run("GrantExpiredMidSession", func(t *testing.T) {
		// The session outliving the grant must not keep the resource open.

		// Arrange
		lapsed := now.Add(-time.Minute)
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				return liveSession(now), nil
			},
			getGrantForResource: func(_ context.Context, _ string, _ int64) (*entity.Grant, error) {
				return &entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &lapsed}, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 100})

		// Assert
		if err != nil {
			t.Fatalf("access check failed: %v", err)
		}
		if out.Decision != entity.AccessDecisionExpired {
			t.Fatalf("expected Expired, got %s", out.Decision)
		}
	})

	t.Run("GrantGoneAfterIssuance", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				return liveSession(now), nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 100})

		// Assert
		if err != nil {
			t.Fatalf("access check failed: %v", err)
		}
		if out.Decision != entity.AccessDecisionNotFound {
			t.Fatalf("expected NotFound, got %s", out.Decision)
		}
	})

	t.Run("ViewCountFailureStillAllows", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				return liveSession(now), nil
			},
			getGrantForResource: func(_ context.Context, _ string, _ int64) (*entity.Grant, error) {
				return &entity.Grant{ID: 10, ResourceID: 100}, nil
			},
			getResourceByID: func(_ context.Context, id int64) (*entity.Resource, error) {
				return &entity.Resource{ID: id}, nil
			},
			incrementGrantViewCount: func(_ context.Context, _ int64) error {
				return errors.New("db down")
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 100})

		// Assert
		if err != nil {
			t.Fatalf("access check failed: %v", err)
		}
		if out.Decision != entity.AccessDecisionAllowed {
			t.Fatalf("expected Allowed, got %s", out.Decision)
		}
	})

	t.Run("ExpiredSession", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getSessionByTokenHash: func(_ context.Context, _ string) (*entity.Session, error) {
				sess := liveSession(now)
				sess.ExpiresAt = now.Add(-time.Second)
				return sess, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		_, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "token-opaque", ResourceID: 100})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	})

	t.Run("UnknownToken", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, withClock(now))

		// Act
		_, err := uc.AccessCheck(context.Background(), AccessCheckInput{SessionToken: "bogus", ResourceID: 100})

		// Assert
		var gerr *goerror.Error
		if !errors.As(err, &gerr) || gerr.Code() != goerror.CodeUnauthorized {
			t.Fatalf("expected unauthorized error, got %v", err)
		}
	})
}
