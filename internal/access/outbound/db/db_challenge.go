package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/reportgate/reportgate/internal/access/entity"
)

func (s *DB) GetChallengeByID(ctx context.Context, id int64) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "GetChallengeByID")
	defer func() { s.endSpan(span, err) }()

	const q = `
		SELECT id, recipient_email, purpose, code_hash, status,
		       attempts_used, max_attempts, created_at, expires_at
		FROM access_challenges
		WHERE id = $1`

	var ch entity.Challenge
	err = s.conn.QueryRow(ctx, q, id).Scan(
		&ch.ID, &ch.RecipientEmail, &ch.Purpose, &ch.CodeHash, &ch.Status,
		&ch.AttemptsUsed, &ch.MaxAttempts, &ch.CreatedAt, &ch.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &ch, nil
}

// NewChallenge installs a fresh pending challenge and, in the same
// transaction, expires any prior pending challenge for the same
// (email, purpose) key so at most one stays live.
func (s *DB) NewChallenge(ctx context.Context, ch entity.Challenge) (err error) {
	ctx, span := s.startSpan(ctx, "NewChallenge")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rolback", "error", rErr)
		}
	}()

	const supersede = `
		UPDATE access_challenges
		SET status = $1
		WHERE recipient_email = $2 AND purpose = $3 AND status = $4`

	if _, err = tx.Exec(ctx, supersede,
		entity.ChallengeStatusExpired, ch.RecipientEmail, ch.Purpose, entity.ChallengeStatusPending,
	); err != nil {
		return s.mapError(err)
	}

	const insert = `
		INSERT INTO access_challenges
			(id, recipient_email, purpose, code_hash, status,
			 attempts_used, max_attempts, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	if _, err = tx.Exec(ctx, insert,
		ch.ID, ch.RecipientEmail, ch.Purpose, ch.CodeHash, ch.Status,
		ch.AttemptsUsed, ch.MaxAttempts, ch.CreatedAt, ch.ExpiresAt,
	); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// MarkChallengeExpired flips a pending challenge to expired. The status
// guard keeps terminal statuses terminal; it reports false when the
// challenge had already left pending.
func (s *DB) MarkChallengeExpired(ctx context.Context, id int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkChallengeExpired")
	defer func() { s.endSpan(span, err) }()

	const q = `
		UPDATE access_challenges
		SET status = $1
		WHERE id = $2 AND status = $3`

	tag, err := s.conn.Exec(ctx, q, entity.ChallengeStatusExpired, id, entity.ChallengeStatusPending)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

func (s *DB) MarkChallengeVerified(ctx context.Context, id int64) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "MarkChallengeVerified")
	defer func() { s.endSpan(span, err) }()

	const q = `
		UPDATE access_challenges
		SET status = $1
		WHERE id = $2 AND status = $3`

	tag, err := s.conn.Exec(ctx, q, entity.ChallengeStatusVerified, id, entity.ChallengeStatusPending)
	if err != nil {
		return false, s.mapError(err)
	}

	return tag.RowsAffected() > 0, nil
}

// RecordFailedAttempt bumps the attempt counter and flips the challenge to
// exhausted when the budget is spent, in one guarded statement, so the
// counter can never pass max_attempts even under concurrent verifies. It
// returns the post-update state, or ErrNotFound when the challenge is no
// longer pending.
func (s *DB) RecordFailedAttempt(ctx context.Context, id int64) (_ *entity.Challenge, err error) {
	ctx, span := s.startSpan(ctx, "RecordFailedAttempt")
	defer func() { s.endSpan(span, err) }()

	const q = `
		UPDATE access_challenges
		SET attempts_used = attempts_used + 1,
		    status = CASE WHEN attempts_used + 1 >= max_attempts THEN $1 ELSE status END
		WHERE id = $2 AND status = $3
		RETURNING id, recipient_email, purpose, code_hash, status,
		          attempts_used, max_attempts, created_at, expires_at`

	var ch entity.Challenge
	err = s.conn.QueryRow(ctx, q, entity.ChallengeStatusExhausted, id, entity.ChallengeStatusPending).Scan(
		&ch.ID, &ch.RecipientEmail, &ch.Purpose, &ch.CodeHash, &ch.Status,
		&ch.AttemptsUsed, &ch.MaxAttempts, &ch.CreatedAt, &ch.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &ch, nil
}
