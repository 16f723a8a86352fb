// internal/game/turn.go
package game

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// startTurn lands on the next unfinished seat, forces a pickup if that
// player cannot play anything, and arms the deadline.
// Assumes lock is held by caller.
func (s *Session) startTurn() {
	if s.status != StatusPlaying {
		return
	}
	s.current = s.normalizeIndex(s.current)
	for i := 0; i < len(s.seats) && s.seats[s.current].HasWon(); i++ {
		s.current = (s.current + 1) % len(s.seats)
	}

	s.turnNumber++
	st := s.seats[s.current]
	if !st.HasPlayable(&s.tower, s.anyCardAllowed) {
		if s.tower.Size() > 0 {
			log.WithFields(log.Fields{"session": s.ID, "player": st.ID, "tower": s.tower.Size()}).Info("no playable card, forcing pickup")
			s.pickup(st, true)
		} else {
			log.WithFields(log.Fields{"session": s.ID, "player": st.ID}).Error("player has no playable card on an empty tower")
		}
	}

	s.armTimer()
	log.Debugf("Game %s: Turn %d starting for player %s (seat %d).", s.ID, s.turnNumber, st.ID, s.current)
	payload := map[string]interface{}{"seat": s.current, "phase": st.Phase.String()}
	if !s.turnDeadline.IsZero() {
		payload["deadline"] = s.turnDeadline
	}
	s.fireEvent(GameEvent{Type: EventPlayerTurn, PlayerID: st.ID, Payload: payload})
}

// nextTurn passes play to the following seat, honouring a pending skip.
// Assumes lock is held by caller.
func (s *Session) nextTurn() {
	s.cancelTimer()
	if s.status != StatusPlaying {
		return
	}
	n := len(s.seats)
	if s.pendingSkip >= 0 && (s.pendingSkip >= n || s.seats[s.pendingSkip].HasWon()) {
		s.pendingSkip = -1
	}

	s.current = (s.normalizeIndex(s.current) + 1) % n
	if s.pendingSkip == s.current {
		skipped := s.seats[s.current].ID
		s.pendingSkip = -1
		s.current = (s.current + 1) % n
		log.WithFields(log.Fields{"session": s.ID, "player": skipped}).Info("turn skipped")
		s.fireEvent(GameEvent{Type: EventTurnSkipped, PlayerID: skipped})
	}

	// A Two opens the floor for exactly one following turn.
	if s.universalFresh {
		s.universalFresh = false
	} else {
		s.anyCardAllowed = false
	}
	s.startTurn()
}

// pickup moves the whole tower into a player's hand.
// Assumes lock is held by caller.
func (s *Session) pickup(st *seat, forced bool) int {
	cards, ok := s.tower.TakeAll()
	if !ok {
		return 0
	}
	st.TakePile(cards)
	s.touch()
	s.fireEvent(GameEvent{
		Type:     EventPlayerPickup,
		PlayerID: st.ID,
		Payload:  map[string]interface{}{"count": len(cards), "forced": forced},
	})
	return len(cards)
}

// armTimer schedules the deadline for the current turn. The callback
// carries the turn number so a stale expiry becomes a no-op.
// Assumes lock is held by caller.
func (s *Session) armTimer() {
	s.cancelTimer()
	d := time.Duration(s.HouseRules.TurnTimerSec) * time.Second
	if d <= 0 || s.status != StatusPlaying {
		return
	}
	s.turnDeadline = s.clock.Now().Add(d)
	turn := s.turnNumber
	s.turnTimer = s.clock.AfterFunc(d, func() {
		s.expireTurn(turn)
	})
}

// cancelTimer stops any pending deadline.
// Assumes lock is held by caller.
func (s *Session) cancelTimer() {
	if s.turnTimer != nil {
		s.turnTimer.Stop()
		s.turnTimer = nil
	}
	s.turnDeadline = time.Time{}
}

// expireTurn forfeits the turn if it is still the one the timer was armed for.
func (s *Session) expireTurn(turn int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying || s.turnNumber != turn {
		return
	}
	playerID := s.seats[s.normalizeIndex(s.current)].ID
	log.WithFields(log.Fields{"session": s.ID, "player": playerID, "turn": turn}).Info("turn deadline expired")
	s.fireEvent(GameEvent{Type: EventTurnTimeout, PlayerID: playerID})
	s.turnTimer = nil
	s.nextTurn()
}

// checkEnd records newly finished players and ends the session once at
// most one player still holds cards. Reports whether the session finished.
// Assumes lock is held by caller.
func (s *Session) checkEnd() bool {
	var remaining []uuid.UUID
	for _, st := range s.seats {
		if !st.HasWon() {
			remaining = append(remaining, st.ID)
			continue
		}
		if !s.hasFinished(st.ID) {
			s.finishers = append(s.finishers, st.ID)
			log.WithFields(log.Fields{"session": s.ID, "player": st.ID, "place": len(s.finishers)}).Info("player emptied all pools")
			s.fireEvent(GameEvent{Type: EventPlayerWon, PlayerID: st.ID, Payload: map[string]interface{}{"place": len(s.finishers)}})
		}
	}
	if len(remaining) > 1 {
		return false
	}

	if len(s.finishers) > 0 {
		s.winner = s.finishers[0]
	}
	if len(remaining) == 1 {
		s.sinner = remaining[0]
	}
	s.finish()
	return true
}

func (s *Session) hasFinished(id uuid.UUID) bool {
	for _, f := range s.finishers {
		if f == id {
			return true
		}
	}
	return false
}

// finish moves the session to Finished and reports the result.
// Assumes lock is held by caller.
func (s *Session) finish() {
	s.cancelTimer()
	s.status = StatusFinished
	s.pendingSkip = -1
	s.touch()

	res := Result{
		SessionID:  s.ID,
		WinnerID:   s.winner,
		SinnerID:   s.sinner,
		Finishers:  append([]uuid.UUID(nil), s.finishers...),
		Turns:      s.turnNumber,
		Purified:   s.tower.PurificationCount(),
		StartedAt:  s.startedAt,
		FinishedAt: s.clock.Now(),
	}
	log.WithFields(log.Fields{"session": s.ID, "winner": s.winner, "sinner": s.sinner, "turns": s.turnNumber}).Info("session finished")
	s.fireEvent(GameEvent{
		Type: EventGameEnd,
		Payload: map[string]interface{}{
			"winner": s.winner.String(),
			"sinner": s.sinner.String(),
		},
	})
	if s.OnGameEnd != nil {
		s.OnGameEnd(res)
	}
}

// normalizeIndex guards against a seat index outside the player list.
// Assumes lock is held by caller.
func (s *Session) normalizeIndex(i int) int {
	if i >= 0 && i < len(s.seats) {
		return i
	}
	log.WithFields(log.Fields{"session": s.ID, "index": i, "seats": len(s.seats)}).Error("current seat out of range, re-deriving")
	if len(s.seats) == 0 {
		return 0
	}
	i %= len(s.seats)
	if i < 0 {
		i += len(s.seats)
	}
	return i
}

// TurnDeadline returns the current turn's deadline, zero if none is armed.
func (s *Session) TurnDeadline() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turnDeadline
}

// CurrentPlayer returns the player whose turn it is, Nil unless playing.
func (s *Session) CurrentPlayer() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPlaying {
		return uuid.Nil
	}
	return s.seats[s.normalizeIndex(s.current)].ID
}

// currentSeat returns the seat whose turn it is.
// Assumes lock is held by caller.
func (s *Session) currentSeat() *seat {
	return s.seats[s.normalizeIndex(s.current)]
}
