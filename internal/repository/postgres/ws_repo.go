package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/risick/microcredito-api/internal/domain/audit"
)

type WSRepository struct {
	pool *pgxpool.Pool
}

func NewWSRepository(pool *pgxpool.Pool) *WSRepository {
	return &WSRepository{pool: pool}
}

func (r *WSRepository) LatestAuditEventID(ctx context.Context) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM audit_events`).Scan(&id)
	return id, err
}

func (r *WSRepository) ListAuditEventsSince(ctx context.Context, lastID int64, limit int32) ([]audit.Event, error) {
	if limit <= 0 {
		limit = 100
	}
	q := `
SELECT id, COALESCE(actor_user_id::text, ''), action, target_type, target_id, payload, created_at
FROM audit_events
WHERE id > $1
ORDER BY id ASC
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Event, 0)
	for rows.Next() {
		var ev audit.Event
		var payload []byte
		if err := rows.Scan(&ev.ID, &ev.ActorUserID, &ev.Action, &ev.TargetType, &ev.TargetID, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Payload = payload
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
