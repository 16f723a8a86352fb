// internal/database/results.go
package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/internal/game"
)

const resultsSchema = `
CREATE TABLE IF NOT EXISTS game_results (
	session_id  UUID PRIMARY KEY,
	winner_id   UUID,
	sinner_id   UUID,
	finishers   UUID[] NOT NULL,
	turns       INTEGER NOT NULL,
	purified    INTEGER NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

const insertResult = `
INSERT INTO game_results (session_id, winner_id, sinner_id, finishers, turns, purified, started_at, finished_at)
VALUES ($1, $2, $3, $4::uuid[], $5, $6, $7, $8)
ON CONFLICT (session_id) DO NOTHING`

// ResultStore writes finished sessions to game_results. Rows are an audit
// trail only; sessions are never restored from them.
type ResultStore struct {
	db Execer
}

// NewResultStore wraps a pool or any other Execer.
func NewResultStore(db Execer) *ResultStore {
	return &ResultStore{db: db}
}

// EnsureSchema creates the results table if it is missing.
func (s *ResultStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, resultsSchema); err != nil {
		return fmt.Errorf("creating game_results: %w", err)
	}
	return nil
}

// RecordResult implements game.ResultRecorder. Recording the same session
// twice is a no-op.
func (s *ResultStore) RecordResult(ctx context.Context, res game.Result) error {
	finishers := make([]string, len(res.Finishers))
	for i, id := range res.Finishers {
		finishers[i] = id.String()
	}
	tag, err := s.db.Exec(ctx, insertResult,
		res.SessionID.String(),
		nullableID(res.WinnerID),
		nullableID(res.SinnerID),
		finishers,
		res.Turns,
		res.Purified,
		res.StartedAt,
		res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("storing result for session %s: %w", res.SessionID, err)
	}
	if tag.RowsAffected() == 0 {
		log.WithField("session", res.SessionID).Warn("result already stored")
	}
	return nil
}

// nullableID maps uuid.Nil to SQL NULL.
func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id.String()
}
