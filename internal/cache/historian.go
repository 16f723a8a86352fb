// internal/cache/historian.go
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jason-s-yu/towerofsins/engine"
	"github.com/jason-s-yu/towerofsins/internal/game"
)

// DefaultRetention is how long an action list lives after its last write.
const DefaultRetention = 24 * time.Hour

// ActionRecord is one logged session event.
type ActionRecord struct {
	SessionID     uuid.UUID              `json:"sessionId"`
	ActionIndex   int                    `json:"actionIndex"`
	Turn          int                    `json:"turn"`
	ActorID       uuid.UUID              `json:"actorId"` // Nil for session-level events
	ActionType    string                 `json:"actionType"`
	Card          *engine.Card           `json:"card,omitempty"`
	ActionPayload map[string]interface{} `json:"actionPayload"`
	Timestamp     int64                  `json:"timestamp"` // unix millis
}

// ActionsKey names the list holding a session's actions.
func ActionsKey(sessionID uuid.UUID) string {
	return "tower:actions:" + sessionID.String()
}

// Historian appends session events to a Redis list per session.
type Historian struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewHistorian wraps a client. A zero retention selects DefaultRetention.
func NewHistorian(rdb *redis.Client, retention time.Duration) *Historian {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Historian{rdb: rdb, retention: retention}
}

// Record implements game.Historian.
func (h *Historian) Record(ctx context.Context, ev game.GameEvent) error {
	rec := ActionRecord{
		SessionID:     ev.SessionID,
		ActionIndex:   ev.Seq,
		Turn:          ev.Turn,
		ActorID:       ev.PlayerID,
		ActionType:    string(ev.Type),
		Card:          ev.Card,
		ActionPayload: ev.Payload,
		Timestamp:     ev.At.UnixMilli(),
	}
	if rec.ActionPayload == nil {
		rec.ActionPayload = make(map[string]interface{})
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal action %d: %w", rec.ActionIndex, err)
	}

	key := ActionsKey(ev.SessionID)
	pipe := h.rdb.TxPipeline()
	pipe.RPush(ctx, key, data)
	pipe.Expire(ctx, key, h.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("push action %d for session %s: %w", rec.ActionIndex, ev.SessionID, err)
	}
	return nil
}

// Actions returns a session's recorded actions, sorted by action index.
// Records arrive asynchronously, so the list order alone is not trusted.
func (h *Historian) Actions(ctx context.Context, sessionID uuid.UUID) ([]ActionRecord, error) {
	raw, err := h.rdb.LRange(ctx, ActionsKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read actions for session %s: %w", sessionID, err)
	}
	out := make([]ActionRecord, 0, len(raw))
	for _, r := range raw {
		var rec ActionRecord
		if err := json.Unmarshal([]byte(r), &rec); err != nil {
			return nil, fmt.Errorf("decode action for session %s: %w", sessionID, err)
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActionIndex < out[j].ActionIndex })
	return out, nil
}
