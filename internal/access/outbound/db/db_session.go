package db

import (
	"context"

	"github.com/reportgate/reportgate/internal/access/entity"
)

func (s *DB) NewSession(ctx context.Context, sess entity.Session) (err error) {
	ctx, span := s.startSpan(ctx, "NewSession")
	defer func() { s.endSpan(span, err) }()

	const q = `
		INSERT INTO access_sessions
			(id, token_hash, recipient_email, resource_ids, issued_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err = s.conn.Exec(ctx, q,
		sess.ID, sess.TokenHash, sess.RecipientEmail, sess.ResourceIDs, sess.IssuedAt, sess.ExpiresAt)

	return s.mapError(err)
}

func (s *DB) GetSessionByTokenHash(ctx context.Context, tokenHash string) (_ *entity.Session, err error) {
	ctx, span := s.startSpan(ctx, "GetSessionByTokenHash")
	defer func() { s.endSpan(span, err) }()

	const q = `
		SELECT id, token_hash, recipient_email, resource_ids, issued_at, expires_at
		FROM access_sessions
		WHERE token_hash = $1`

	var sess entity.Session
	err = s.conn.QueryRow(ctx, q, tokenHash).Scan(
		&sess.ID, &sess.TokenHash, &sess.RecipientEmail, &sess.ResourceIDs,
		&sess.IssuedAt, &sess.ExpiresAt,
	)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &sess, nil
}
