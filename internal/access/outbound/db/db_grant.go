package db

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/reportgate/reportgate/internal/access/entity"
)

const grantColumns = `id, resource_id, recipient_email, created_at, expires_at, revoked_at, superseded_at, view_count`

func scanGrant(row pgx.Row) (*entity.Grant, error) {
	var g entity.Grant
	err := row.Scan(
		&g.ID, &g.ResourceID, &g.RecipientEmail, &g.CreatedAt,
		&g.ExpiresAt, &g.RevokedAt, &g.SupersededAt, &g.ViewCount,
	)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (s *DB) GetGrantByID(ctx context.Context, id int64) (_ *entity.Grant, err error) {
	ctx, span := s.startSpan(ctx, "GetGrantByID")
	defer func() { s.endSpan(span, err) }()

	g, err := scanGrant(s.conn.QueryRow(ctx,
		`SELECT `+grantColumns+` FROM access_grants WHERE id = $1`, id))
	if err != nil {
		return nil, s.mapError(err)
	}

	return g, nil
}

// GetGrantForResource returns the live (non-superseded) grant for a
// (recipient, resource) pair, whatever its derived status.
func (s *DB) GetGrantForResource(ctx context.Context, email string, resourceID int64) (_ *entity.Grant, err error) {
	ctx, span := s.startSpan(ctx, "GetGrantForResource")
	defer func() { s.endSpan(span, err) }()

	const q = `
		SELECT ` + grantColumns + `
		FROM access_grants
		WHERE recipient_email = $1 AND resource_id = $2 AND superseded_at IS NULL`

	g, err := scanGrant(s.conn.QueryRow(ctx, q, email, resourceID))
	if err != nil {
		return nil, s.mapError(err)
	}

	return g, nil
}

func (s *DB) GetGrantsByRecipient(ctx context.Context, email string) (_ []entity.GrantResource, err error) {
	ctx, span := s.startSpan(ctx, "GetGrantsByRecipient")
	defer func() { s.endSpan(span, err) }()

	const q = `
		SELECT g.id, g.resource_id, g.recipient_email, g.created_at,
		       g.expires_at, g.revoked_at, g.superseded_at, g.view_count,
		       r.id, r.title, r.description, r.owner_id, r.created_at
		FROM access_grants g
		JOIN access_resources r ON r.id = g.resource_id
		WHERE g.recipient_email = $1 AND g.superseded_at IS NULL
		ORDER BY g.created_at DESC`

	rows, err := s.conn.Query(ctx, q, email)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make([]entity.GrantResource, 0)
	for rows.Next() {
		var gr entity.GrantResource
		if err = rows.Scan(
			&gr.Grant.ID, &gr.Grant.ResourceID, &gr.Grant.RecipientEmail, &gr.Grant.CreatedAt,
			&gr.Grant.ExpiresAt, &gr.Grant.RevokedAt, &gr.Grant.SupersededAt, &gr.Grant.ViewCount,
			&gr.Resource.ID, &gr.Resource.Title, &gr.Resource.Description,
			&gr.Resource.OwnerID, &gr.Resource.CreatedAt,
		); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, gr)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}

// NewGrant installs a grant and, in the same transaction, marks the prior
// live grant for the (resource, recipient) pair superseded. A concurrent
// reader sees either the old grant fully live or the new one, never both.
func (s *DB) NewGrant(ctx context.Context, g entity.Grant) (err error) {
	ctx, span := s.startSpan(ctx, "NewGrant")
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
		UPDATE access_grants
		SET superseded_at = $1
		WHERE resource_id = $2 AND recipient_email = $3 AND superseded_at IS NULL`

	if _, err = tx.Exec(ctx, supersede, g.CreatedAt, g.ResourceID, g.RecipientEmail); err != nil {
		return s.mapError(err)
	}

	const insert = `
		INSERT INTO access_grants
			(id, resource_id, recipient_email, created_at, expires_at, view_count)
		VALUES ($1, $2, $3, $4, $5, 0)`

	if _, err = tx.Exec(ctx, insert, g.ID, g.ResourceID, g.RecipientEmail, g.CreatedAt, g.ExpiresAt); err != nil {
		return s.mapError(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}

// RevokeGrant stamps the revocation time once. Revoking an already revoked
// grant reports false without touching the original timestamp.
func (s *DB) RevokeGrant(ctx context.Context, id int64, at time.Time) (_ bool, err error) {
	ctx, span := s.startSpan(ctx, "RevokeGrant")
	defer func() { s.endSpan(span, err) }()

	const q = `
		UPDATE access_grants
		SET revoked_at = $1
		WHERE id = $2 AND revoked_at IS NULL`

	tag, err := s.conn.Exec(ctx, q, at, id)
	if err != nil {
		return false, s.mapError(err)
	}

	if tag.RowsAffected() == 0 {
		// Distinguish a missing grant from an already revoked one.
		var exists bool
		if err = s.conn.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM access_grants WHERE id = $1)`, id,
		).Scan(&exists); err != nil {
			return false, s.mapError(err)
		}
		if !exists {
			return false, s.mapError(pgx.ErrNoRows)
		}

		return false, nil
	}

	return true, nil
}

func (s *DB) IncrementGrantViewCount(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "IncrementGrantViewCount")
	defer func() { s.endSpan(span, err) }()

	_, err = s.conn.Exec(ctx,
		`UPDATE access_grants SET view_count = view_count + 1 WHERE id = $1`, id)

	return s.mapError(err)
}
