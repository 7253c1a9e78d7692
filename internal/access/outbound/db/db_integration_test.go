package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reportgate/reportgate/internal/access/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

const schema = `
CREATE TABLE access_resources (
	id          BIGINT PRIMARY KEY,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	owner_id    BIGINT NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE access_challenges (
	id              BIGINT PRIMARY KEY,
	recipient_email TEXT NOT NULL,
	purpose         SMALLINT NOT NULL,
	code_hash       TEXT NOT NULL,
	status          SMALLINT NOT NULL,
	attempts_used   INT NOT NULL DEFAULT 0,
	max_attempts    INT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	expires_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX access_challenges_pair_idx ON access_challenges (recipient_email, purpose);

CREATE TABLE access_grants (
	id              BIGINT PRIMARY KEY,
	resource_id     BIGINT NOT NULL,
	recipient_email TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL,
	expires_at      TIMESTAMPTZ,
	revoked_at      TIMESTAMPTZ,
	superseded_at   TIMESTAMPTZ,
	view_count      BIGINT NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX access_grants_live_idx
	ON access_grants (resource_id, recipient_email)
	WHERE superseded_at IS NULL;

CREATE TABLE access_sessions (
	id              BIGINT PRIMARY KEY,
	token_hash      TEXT NOT NULL UNIQUE,
	recipient_email TEXT NOT NULL,
	resource_ids    BIGINT[] NOT NULL,
	issued_at       TIMESTAMPTZ NOT NULL,
	expires_at      TIMESTAMPTZ NOT NULL
);
`

func newTestDB(t *testing.T) *DB {
	t.Helper()

	if testing.Short() {
		t.Skip("requires a local docker daemon")
	}

	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:17-alpine",
		tcpostgres.WithDatabase("reportgate"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return NewDB(pool, instrument.NewNoop())
}

func pendingChallengeRow(id int64, email string, purpose entity.ChallengePurpose, now time.Time) entity.Challenge {
	return entity.Challenge{
		ID:             id,
		RecipientEmail: email,
		Purpose:        purpose,
		CodeHash:       "argon:482910",
		Status:         entity.ChallengeStatusPending,
		MaxAttempts:    3,
		CreatedAt:      now,
		ExpiresAt:      now.Add(5 * time.Minute),
	}
}

func TestNewChallengeSupersedesPendingChallenge(t *testing.T) {
	// Arrange
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := pendingChallengeRow(1, "guest@example.com", entity.ChallengePurposeGuestAccess, now)
	if err := store.NewChallenge(ctx, first); err != nil {
		t.Fatalf("seed first challenge: %v", err)
	}
	otherPurpose := pendingChallengeRow(2, "guest@example.com", entity.ChallengePurposePasswordReset, now)
	if err := store.NewChallenge(ctx, otherPurpose); err != nil {
		t.Fatalf("seed other purpose challenge: %v", err)
	}

	// Act
	second := pendingChallengeRow(3, "guest@example.com", entity.ChallengePurposeGuestAccess, now.Add(time.Minute))
	if err := store.NewChallenge(ctx, second); err != nil {
		t.Fatalf("issue second challenge: %v", err)
	}

	// Assert
	got, err := store.GetChallengeByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first challenge: %v", err)
	}
	if got.Status != entity.ChallengeStatusExpired {
		t.Fatalf("expected first challenge expired, got %s", got.Status)
	}

	got, err = store.GetChallengeByID(ctx, second.ID)
	if err != nil {
		t.Fatalf("get second challenge: %v", err)
	}
	if got.Status != entity.ChallengeStatusPending {
		t.Fatalf("expected second challenge pending, got %s", got.Status)
	}

	var livePair int
	err = store.conn.QueryRow(ctx,
		`SELECT count(*) FROM access_challenges WHERE recipient_email = $1 AND purpose = $2 AND status = $3`,
		"guest@example.com", entity.ChallengePurposeGuestAccess, entity.ChallengeStatusPending,
	).Scan(&livePair)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if livePair != 1 {
		t.Fatalf("expected exactly one pending challenge for the pair, got %d", livePair)
	}

	got, err = store.GetChallengeByID(ctx, otherPurpose.ID)
	if err != nil {
		t.Fatalf("get other purpose challenge: %v", err)
	}
	if got.Status != entity.ChallengeStatusPending {
		t.Fatalf("expected other purpose untouched, got %s", got.Status)
	}
}

func TestRecordFailedAttemptStopsAtMaxAttempts(t *testing.T) {
	// Arrange
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	ch := pendingChallengeRow(10, "guest@example.com", entity.ChallengePurposeGuestAccess, now)
	if err := store.NewChallenge(ctx, ch); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	// Act & Assert
	for want := int32(1); want < ch.MaxAttempts; want++ {
		got, err := store.RecordFailedAttempt(ctx, ch.ID)
		if err != nil {
			t.Fatalf("attempt %d: %v", want, err)
		}
		if got.AttemptsUsed != want {
			t.Fatalf("expected %d attempts used, got %d", want, got.AttemptsUsed)
		}
		if got.Status != entity.ChallengeStatusPending {
			t.Fatalf("expected pending after attempt %d, got %s", want, got.Status)
		}
	}

	got, err := store.RecordFailedAttempt(ctx, ch.ID)
	if err != nil {
		t.Fatalf("final attempt: %v", err)
	}
	if got.AttemptsUsed != ch.MaxAttempts {
		t.Fatalf("expected %d attempts used, got %d", ch.MaxAttempts, got.AttemptsUsed)
	}
	if got.Status != entity.ChallengeStatusExhausted {
		t.Fatalf("expected exhausted on final attempt, got %s", got.Status)
	}

	// A further attempt finds no pending row and cannot push the counter past max.
	if _, err := store.RecordFailedAttempt(ctx, ch.ID); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected not found after exhaustion, got %v", err)
	}

	got, err = store.GetChallengeByID(ctx, ch.ID)
	if err != nil {
		t.Fatalf("reload challenge: %v", err)
	}
	if got.AttemptsUsed != ch.MaxAttempts || got.Status != entity.ChallengeStatusExhausted {
		t.Fatalf("expected counter frozen at %d exhausted, got %d %s", ch.MaxAttempts, got.AttemptsUsed, got.Status)
	}
}

func TestChallengeStatusGuardsKeepTerminalStatesTerminal(t *testing.T) {
	// Arrange
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	ch := pendingChallengeRow(20, "guest@example.com", entity.ChallengePurposeGuestAccess, now)
	if err := store.NewChallenge(ctx, ch); err != nil {
		t.Fatalf("seed challenge: %v", err)
	}

	// Act
	flipped, err := store.MarkChallengeVerified(ctx, ch.ID)
	if err != nil {
		t.Fatalf("mark verified: %v", err)
	}

	// Assert
	if !flipped {
		t.Fatalf("expected pending challenge to flip to verified")
	}

	flipped, err = store.MarkChallengeExpired(ctx, ch.ID)
	if err != nil {
		t.Fatalf("mark expired: %v", err)
	}
	if flipped {
		t.Fatalf("expected verified challenge to resist expiry")
	}

	flipped, err = store.MarkChallengeVerified(ctx, ch.ID)
	if err != nil {
		t.Fatalf("mark verified again: %v", err)
	}
	if flipped {
		t.Fatalf("expected second verify mark to report false")
	}

	got, err := store.GetChallengeByID(ctx, ch.ID)
	if err != nil {
		t.Fatalf("reload challenge: %v", err)
	}
	if got.Status != entity.ChallengeStatusVerified {
		t.Fatalf("expected status to stay verified, got %s", got.Status)
	}
}

func TestNewGrantSupersedesPriorGrant(t *testing.T) {
	// Arrange
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	first := entity.Grant{ID: 1, ResourceID: 100, RecipientEmail: "guest@example.com", CreatedAt: now}
	if err := store.NewGrant(ctx, first); err != nil {
		t.Fatalf("seed first grant: %v", err)
	}
	otherRecipient := entity.Grant{ID: 2, ResourceID: 100, RecipientEmail: "other@example.com", CreatedAt: now}
	if err := store.NewGrant(ctx, otherRecipient); err != nil {
		t.Fatalf("seed other recipient grant: %v", err)
	}

	// Act
	expiry := now.Add(30 * 24 * time.Hour)
	second := entity.Grant{ID: 3, ResourceID: 100, RecipientEmail: "guest@example.com", CreatedAt: now.Add(time.Minute), ExpiresAt: &expiry}
	if err := store.NewGrant(ctx, second); err != nil {
		t.Fatalf("issue second grant: %v", err)
	}

	// Assert
	got, err := store.GetGrantByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("get first grant: %v", err)
	}
	if got.SupersededAt == nil {
		t.Fatalf("expected first grant superseded")
	}

	live, err := store.GetGrantForResource(ctx, "guest@example.com", 100)
	if err != nil {
		t.Fatalf("get live grant: %v", err)
	}
	if live.ID != second.ID {
		t.Fatalf("expected live grant %d, got %d", second.ID, live.ID)
	}

	var liveCount int
	err = store.conn.QueryRow(ctx,
		`SELECT count(*) FROM access_grants WHERE resource_id = $1 AND recipient_email = $2 AND superseded_at IS NULL`,
		100, "guest@example.com",
	).Scan(&liveCount)
	if err != nil {
		t.Fatalf("count live grants: %v", err)
	}
	if liveCount != 1 {
		t.Fatalf("expected exactly one live grant for the pair, got %d", liveCount)
	}

	untouched, err := store.GetGrantForResource(ctx, "other@example.com", 100)
	if err != nil {
		t.Fatalf("get other recipient grant: %v", err)
	}
	if untouched.SupersededAt != nil {
		t.Fatalf("expected other recipient grant untouched")
	}
}

func TestRevokeGrantStampsRevocationOnce(t *testing.T) {
	// Arrange
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	g := entity.Grant{ID: 1, ResourceID: 100, RecipientEmail: "guest@example.com", CreatedAt: now}
	if err := store.NewGrant(ctx, g); err != nil {
		t.Fatalf("seed grant: %v", err)
	}

	// Act
	revoked, err := store.RevokeGrant(ctx, g.ID, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("revoke grant: %v", err)
	}

	// Assert
	if !revoked {
		t.Fatalf("expected first revoke to stamp")
	}

	revoked, err = store.RevokeGrant(ctx, g.ID, now.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	if revoked {
		t.Fatalf("expected second revoke to report false")
	}

	got, err := store.GetGrantByID(ctx, g.ID)
	if err != nil {
		t.Fatalf("reload grant: %v", err)
	}
	if got.RevokedAt == nil || !got.RevokedAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected original revocation timestamp preserved, got %v", got.RevokedAt)
	}

	if _, err := store.RevokeGrant(ctx, 999, now); !errors.Is(err, goerror.ErrNotFound) {
		t.Fatalf("expected not found for unknown grant, got %v", err)
	}
}
