package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reportgate/reportgate/internal/notification/entity"
	"github.com/reportgate/reportgate/internal/pkg/goerror"
	"github.com/reportgate/reportgate/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type DB struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

func NewDB(conn *pgxpool.Pool, ins instrument.Instrumentation) *DB {
	return &DB{conn: conn, ins: ins}
}

func (s *DB) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return goerror.ErrConflict
	}

	return err
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) CreateDelivery(ctx context.Context, d entity.CreateDelivery) (err error) {
	ctx, span := s.startSpan(ctx, "CreateDelivery")
	defer func() { s.endSpan(span, err) }()

	const q = `
		INSERT INTO notification_deliveries
			(id, recipient_email, purpose, subject, status, attempts, provider_response)
		VALUES ($1, $2, $3, $4, $5, 0, '{}')`

	_, err = s.conn.Exec(ctx, q, d.ID, d.RecipientEmail, d.Purpose, d.Subject, d.Status)

	return s.mapError(err)
}

func (s *DB) UpdateDeliveryStatus(ctx context.Context, u entity.UpdateDelivery) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateDeliveryStatus")
	defer func() { s.endSpan(span, err) }()

	const q = `
		UPDATE notification_deliveries
		SET status = $1, attempts = $2, provider_response = $3, updated_at = now()
		WHERE id = $4`

	_, err = s.conn.Exec(ctx, q, u.Status, u.Attempts, u.ProviderResponse, u.ID)

	return s.mapError(err)
}

func (s *DB) ListDeliveries(ctx context.Context, recipientEmail string, limit, offset int32) (_ []entity.Delivery, err error) {
	ctx, span := s.startSpan(ctx, "ListDeliveries")
	defer func() { s.endSpan(span, err) }()

	const q = `
		SELECT id, recipient_email, purpose, subject, status, attempts,
		       provider_response, created_at, updated_at
		FROM notification_deliveries
		WHERE ($1 = '' OR recipient_email = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := s.conn.Query(ctx, q, recipientEmail, limit, offset)
	if err != nil {
		return nil, s.mapError(err)
	}
	defer rows.Close()

	out := make([]entity.Delivery, 0)
	for rows.Next() {
		var d entity.Delivery
		if err = rows.Scan(
			&d.ID, &d.RecipientEmail, &d.Purpose, &d.Subject, &d.Status, &d.Attempts,
			&d.ProviderResponse, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, s.mapError(err)
		}
		out = append(out, d)
	}
	if err = rows.Err(); err != nil {
		return nil, s.mapError(err)
	}

	return out, nil
}
