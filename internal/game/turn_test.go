// internal/game/turn_test.go
package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/towerofsins/engine"
)

func TestTurnDeadlineArmed(t *testing.T) {
	s, _, _, fc := setupTestGame(t, 2, nil)
	assert.Equal(t, fc.Now().Add(15*time.Second), s.TurnDeadline())
}

func TestTurnTimerDisabled(t *testing.T) {
	hr := DefaultHouseRules()
	hr.TurnTimerSec = 0
	s, players, _, _ := setupTestGame(t, 2, &hr)
	assert.True(t, s.TurnDeadline().IsZero())
	assert.Nil(t, s.Snapshot(players[0]).TurnDeadline)
}

// TestTurnTimeoutAdvances lets the deadline lapse on the fake clock.
func TestTurnTimeoutAdvances(t *testing.T) {
	s, players, mb, fc := setupTestGame(t, 2, nil)
	require.Equal(t, players[0], s.CurrentPlayer())

	fc.Advance(15 * time.Second)
	require.Eventually(t, func() bool {
		return s.CurrentPlayer() == players[1]
	}, time.Second, 5*time.Millisecond)

	ev := mb.findEventByType(EventTurnTimeout)
	require.NotNil(t, ev)
	assert.Equal(t, players[0], ev.PlayerID)
}

// TestStaleExpiryIsNoop verifies an expiry for an earlier turn changes nothing.
func TestStaleExpiryIsNoop(t *testing.T) {
	s, players, mb, _ := setupTestGame(t, 2, nil)
	rig(s, 0, engine.PhaseHand, ranks(engine.RankKing, engine.RankKing), nil, ranks(engine.RankKing), nil)

	_, err := s.Play(players[0], 0, uuid.Nil)
	require.NoError(t, err)
	turn := s.Snapshot(players[0]).TurnNumber
	current := s.CurrentPlayer()

	s.expireTurn(turn - 1)
	assert.Equal(t, turn, s.Snapshot(players[0]).TurnNumber)
	assert.Equal(t, current, s.CurrentPlayer())
	assert.Nil(t, mb.findEventByType(EventTurnTimeout))

	s.expireTurn(turn)
	assert.Equal(t, turn+1, s.Snapshot(players[0]).TurnNumber)
	assert.NotNil(t, mb.findEventByType(EventTurnTimeout))
}

// TestPlayRearmsDeadline verifies a play replaces the running deadline.
func TestPlayRearmsDeadline(t *testing.T) {
	s, players, _, fc := setupTestGame(t, 2, nil)
	rig(s, 0, engine.PhaseHand, ranks(engine.RankKing, engine.RankKing), nil, ranks(engine.RankKing), nil)

	fc.Advance(10 * time.Second)
	_, err := s.Play(players[0], 0, uuid.Nil)
	require.NoError(t, err)
	turn := s.Snapshot(players[0]).TurnNumber
	assert.Equal(t, fc.Now().Add(15*time.Second), s.TurnDeadline())

	fc.Advance(10 * time.Second)
	assert.Never(t, func() bool {
		return s.Snapshot(players[0]).TurnNumber != turn
	}, 50*time.Millisecond, 5*time.Millisecond)
}

func TestFinishedSessionHoldsNoTimer(t *testing.T) {
	s, players, _, _ := setupTestGame(t, 2, nil)
	rig(s, 0, engine.PhaseFaceDown, nil, nil, ranks(engine.RankKing), nil)

	_, err := s.Play(players[0], 0, uuid.Nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, s.Status())
	assert.True(t, s.TurnDeadline().IsZero())

	s.mu.Lock()
	assert.Nil(t, s.turnTimer)
	s.mu.Unlock()
}
