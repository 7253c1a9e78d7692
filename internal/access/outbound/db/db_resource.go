package db

import (
	"context"

	"github.com/reportgate/reportgate/internal/access/entity"
)

func (s *DB) GetResourceByID(ctx context.Context, id int64) (_ *entity.Resource, err error) {
	ctx, span := s.startSpan(ctx, "GetResourceByID")
	defer func() { s.endSpan(span, err) }()

	const q = `
		SELECT id, title, description, owner_id, created_at
		FROM access_resources
		WHERE id = $1`

	var r entity.Resource
	err = s.conn.QueryRow(ctx, q, id).Scan(&r.ID, &r.Title, &r.Description, &r.OwnerID, &r.CreatedAt)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &r, nil
}
