package audit

import (
	"context"
	"encoding/json"
	"time"
)

const (
	ActionBorrowerCreated       = "borrower_created"
	ActionBorrowerUpdated       = "borrower_updated"
	ActionBorrowerDeactivated   = "borrower_deactivated"
	ActionBorrowerRescored      = "borrower_rescored"
	ActionBorrowerRescoreQueued = "borrower_rescore_queued"
	ActionUserRegistered        = "user_registered"
	ActionUserUpdated           = "user_updated"
	ActionUserDeactivated       = "user_deactivated"

	TargetBorrower = "borrower"
	TargetUser     = "user"
)

type LogInput struct {
	ActorUserID string
	Action      string
	TargetType  string
	TargetID    string
	Payload     []byte
}

type Event struct {
	ID          int64           `json:"id"`
	ActorUserID string          `json:"actorUserId,omitempty"`
	Action      string          `json:"action"`
	TargetType  string          `json:"targetType"`
	TargetID    string          `json:"targetId"`
	Payload     json.RawMessage `json:"payload,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type Repository interface {
	Log(ctx context.Context, in LogInput) error
}

// Record writes an audit entry and swallows failures; auditing never blocks
// the mutation it describes.
func Record(ctx context.Context, repo Repository, actorUserID, action, targetType, targetID string, payload map[string]any) {
	if repo == nil {
		return
	}
	raw, _ := json.Marshal(payload)
	_ = repo.Log(ctx, LogInput{
		ActorUserID: actorUserID,
		Action:      action,
		TargetType:  targetType,
		TargetID:    targetID,
		Payload:     raw,
	})
}
