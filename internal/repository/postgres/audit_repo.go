package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/risick/microcredito-api/internal/domain/audit"
)

type AuditRepository struct {
	pool *pgxpool.Pool
}

func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{pool: pool}
}

func (r *AuditRepository) Log(ctx context.Context, in audit.LogInput) error {
	payload := in.Payload
	if len(payload) == 0 || string(payload) == "null" {
		payload = []byte("{}")
	}
	q := `
INSERT INTO audit_events (actor_user_id, action, target_type, target_id, payload)
VALUES (NULLIF($1, '')::uuid, $2, $3, $4, $5::jsonb)
`
	_, err := r.pool.Exec(ctx, q, in.ActorUserID, in.Action, in.TargetType, in.TargetID, payload)
	return err
}
