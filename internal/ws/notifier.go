package ws

import (
	"context"
	"encoding/json"
	"time"

	"github.com/risick/microcredito-api/internal/domain/audit"
)

type RealtimeRepository interface {
	LatestAuditEventID(ctx context.Context) (int64, error)
	ListAuditEventsSince(ctx context.Context, lastID int64, limit int32) ([]audit.Event, error)
}

type Notifier struct {
	repo         RealtimeRepository
	hub          *Hub
	pollInterval time.Duration
	lastID       int64
}

func NewNotifier(repo RealtimeRepository, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{repo: repo, hub: hub, pollInterval: pollInterval}
}

// Run streams audit events written after startup; history is not replayed.
func (n *Notifier) Run(ctx context.Context) error {
	latest, err := n.repo.LatestAuditEventID(ctx)
	if err != nil {
		return err
	}
	n.lastID = latest

	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	events, err := n.repo.ListAuditEventsSince(ctx, n.lastID, 100)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.ID > n.lastID {
			n.lastID = ev.ID
		}
		payload, _ := json.Marshal(map[string]any{
			"event": ev.Action,
			"data":  ev,
		})
		n.hub.Publish(ChannelAudit, payload)
		if ev.TargetType == audit.TargetBorrower && ev.TargetID != "" {
			n.hub.Publish(ChannelBorrowerPrefix+ev.TargetID, payload)
		}
	}
	return nil
}
