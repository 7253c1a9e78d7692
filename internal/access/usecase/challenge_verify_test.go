package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/reportgate/reportgate/internal/access/entity"
)

func pendingChallenge(now time.Time) *entity.Challenge {
	return &entity.Challenge{
		ID:             1,
		RecipientEmail: "guest@example.com",
		Purpose:        entity.ChallengePurposeGuestAccess,
		CodeHash:       "argon:482910",
		Status:         entity.ChallengeStatusPending,
		MaxAttempts:    3,
		CreatedAt:      now.Add(-time.Minute),
		ExpiresAt:      now.Add(4 * time.Minute),
	}
}

func TestChallengeVerify(t *testing.T) {
	now := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

	t.Run("ValidCode", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.Purpose = entity.ChallengePurposePasswordReset
				return ch, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusValid {
			t.Fatalf("expected Valid, got %s", out.Status)
		}
		if out.SessionToken != "" {
			t.Fatalf("password-reset verify must not mint a guest session")
		}
	})

	t.Run("ValidGuestAccessMintsSession", func(t *testing.T) {
		// Arrange
		expiry := now.Add(48 * time.Hour)
		var stored entity.Session
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			getGrantsByRecipient: func(_ context.Context, _ string) ([]entity.GrantResource, error) {
				return []entity.GrantResource{
					{Grant: entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &expiry}},
					{Grant: entity.Grant{ID: 11, ResourceID: 101}},
				}, nil
			},
			newSession: func(_ context.Context, s entity.Session) error {
				stored = s
				return nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusValid || out.SessionToken == "" || out.SessionExpiresAt == nil {
			t.Fatalf("expected a guest session, got %+v", out)
		}
		if stored.TokenHash == out.SessionToken {
			t.Fatalf("session must store a token hash, not the raw token")
		}
		if len(stored.ResourceIDs) != 2 {
			t.Fatalf("expected 2 covered resources, got %v", stored.ResourceIDs)
		}
	})

	t.Run("SessionExpiryFollowsShortestGrant", func(t *testing.T) {
		// Arrange
		short := now.Add(2 * time.Hour)
		long := now.Add(20 * time.Hour)
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			getGrantsByRecipient: func(_ context.Context, _ string) ([]entity.GrantResource, error) {
				return []entity.GrantResource{
					{Grant: entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &long}},
					{Grant: entity.Grant{ID: 11, ResourceID: 101, ExpiresAt: &short}},
				}, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if !out.SessionExpiresAt.Equal(short) {
			t.Fatalf("expected session to end at %v, got %v", short, out.SessionExpiresAt)
		}
	})

	t.Run("SessionExpiryDefaultsWhenAllGrantsUnlimited", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			getGrantsByRecipient: func(_ context.Context, _ string) ([]entity.GrantResource, error) {
				return []entity.GrantResource{{Grant: entity.Grant{ID: 10, ResourceID: 100}}}, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if want := now.Add(30 * time.Minute); !out.SessionExpiresAt.Equal(want) {
			t.Fatalf("expected default session ttl %v, got %v", want, out.SessionExpiresAt)
		}
	})

	t.Run("SessionExpiryCappedByHardMax", func(t *testing.T) {
		// Arrange
		far := now.Add(30 * 24 * time.Hour)
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			getGrantsByRecipient: func(_ context.Context, _ string) ([]entity.GrantResource, error) {
				return []entity.GrantResource{{Grant: entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &far}}}, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if want := now.Add(24 * time.Hour); !out.SessionExpiresAt.Equal(want) {
			t.Fatalf("expected session capped at %v, got %v", want, out.SessionExpiresAt)
		}
	})

	t.Run("SessionSkipsRevokedAndExpiredGrants", func(t *testing.T) {
		// Arrange
		lapsed := now.Add(-time.Hour)
		revoked := now.Add(-time.Minute)
		var stored entity.Session
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			getGrantsByRecipient: func(_ context.Context, _ string) ([]entity.GrantResource, error) {
				return []entity.GrantResource{
					{Grant: entity.Grant{ID: 10, ResourceID: 100, ExpiresAt: &lapsed}},
					{Grant: entity.Grant{ID: 11, ResourceID: 101, RevokedAt: &revoked}},
					{Grant: entity.Grant{ID: 12, ResourceID: 102}},
				}, nil
			},
			newSession: func(_ context.Context, s entity.Session) error {
				stored = s
				return nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		_, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if len(stored.ResourceIDs) != 1 || stored.ResourceIDs[0] != 102 {
			t.Fatalf("expected only the active resource, got %v", stored.ResourceIDs)
		}
	})

	t.Run("WrongCode", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			recordFailedAttempt: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.AttemptsUsed = 1
				return ch, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "000000"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusInvalidCode {
			t.Fatalf("expected InvalidCode, got %s", out.Status)
		}
	})

	t.Run("AttemptsExhausted", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.AttemptsUsed = 2
				return ch, nil
			},
			recordFailedAttempt: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.AttemptsUsed = 3
				ch.Status = entity.ChallengeStatusExhausted
				return ch, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "000000"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusExhausted {
			t.Fatalf("expected Exhausted, got %s", out.Status)
		}
	})

	t.Run("CorrectCodeAfterExhaustionIsRejected", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.AttemptsUsed = 3
				ch.Status = entity.ChallengeStatusExhausted
				return ch, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusNotFound {
			t.Fatalf("expected NotFound for an exhausted challenge, got %s", out.Status)
		}
	})

	t.Run("ExpiredChallengeFlipsStatus", func(t *testing.T) {
		// Arrange
		var expired int64
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.ExpiresAt = now.Add(-time.Second)
				return ch, nil
			},
			markChallengeExpired: func(_ context.Context, id int64) (bool, error) {
				expired = id
				return true, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusExpired {
			t.Fatalf("expected Expired, got %s", out.Status)
		}
		if expired != 1 {
			t.Fatalf("expected challenge 1 to be marked expired, got %d", expired)
		}
	})

	t.Run("ReplayOfVerifiedCode", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				ch := pendingChallenge(now)
				ch.Status = entity.ChallengeStatusVerified
				return ch, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusNotFound {
			t.Fatalf("a spent code must verify as NotFound, got %s", out.Status)
		}
	})

	t.Run("UnknownChallenge", func(t *testing.T) {
		// Arrange
		uc := newTestUsecase(t, withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 404, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusNotFound {
			t.Fatalf("expected NotFound, got %s", out.Status)
		}
	})

	t.Run("LostVerifyRace", func(t *testing.T) {
		// Arrange
		db := &fakeRepoDB{
			getChallengeByID: func(_ context.Context, _ int64) (*entity.Challenge, error) {
				return pendingChallenge(now), nil
			},
			markChallengeVerified: func(_ context.Context, _ int64) (bool, error) {
				return false, nil
			},
		}
		uc := newTestUsecase(t, withRepoDB(db), withClock(now))

		// Act
		out, err := uc.ChallengeVerify(context.Background(), ChallengeVerifyInput{ChallengeID: 1, Code: "482910"})

		// Assert
		if err != nil {
			t.Fatalf("challenge verify failed: %v", err)
		}
		if out.Status != entity.VerifyStatusNotFound {
			t.Fatalf("expected NotFound after losing the race, got %s", out.Status)
		}
	})
}
