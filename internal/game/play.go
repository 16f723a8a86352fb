// internal/game/play.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/engine"
)

// PlayResult describes an accepted play.
type PlayResult struct {
	Card      engine.Card         `json:"card"`
	Purified  engine.PurifyReason `json:"purified"`  // PurifyNone unless the play cleared the tower
	PickedUp  int                 `json:"pickedUp"`  // cards taken after a missed face-down flip
	TurnEnded bool                `json:"turnEnded"` // false when the player keeps the turn
	Won       bool                `json:"won"`
}

// Play places the card at index of the player's current-phase pool.
// Rejections leave the session untouched. Face-down cards are flipped
// blind: a miss forces a pickup and the player keeps the turn.
func (s *Session) Play(playerID uuid.UUID, index int, targetID uuid.UUID) (PlayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return PlayResult{}, fmt.Errorf("%w: session %s is %s", engine.ErrNotPlaying, s.ID, s.status)
	}
	idx := s.seatIndex(playerID)
	if idx < 0 {
		return PlayResult{}, fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, playerID)
	}
	if idx != s.normalizeIndex(s.current) {
		return PlayResult{}, fmt.Errorf("%w: it is %s's turn", engine.ErrNotCurrentTurn, s.currentSeat().ID)
	}
	if targetID != uuid.Nil && s.seatIndex(targetID) < 0 {
		return PlayResult{}, fmt.Errorf("%w: target %s", engine.ErrPlayerNotFound, targetID)
	}

	st := s.seats[idx]
	pool := st.CurrentPool()
	if index < 0 || index >= len(pool) {
		return PlayResult{}, fmt.Errorf("%w: index %d, %s pool has %d cards", engine.ErrInvalidIndex, index, st.Phase, len(pool))
	}
	blind := st.Phase == engine.PhaseFaceDown
	if !blind {
		if ok, reason := s.tower.CanAccept(pool[index], s.anyCardAllowed); !ok {
			return PlayResult{}, fmt.Errorf("%w: %s", engine.ErrNotPlayable, reason)
		}
	}

	card, err := st.PlayCard(index)
	if err != nil {
		return PlayResult{}, err
	}
	now := s.clock.Now()
	s.touch()
	res := PlayResult{Card: card}

	if blind && !card.IsPlayableOn(s.tower.Top(), s.anyCardAllowed) {
		s.tower.Append(card, playerID, now)
		s.fireEvent(GameEvent{Type: EventPlayerPlay, PlayerID: playerID, Card: &card, Payload: map[string]interface{}{"blind": true, "missed": true}})
		log.WithFields(log.Fields{"session": s.ID, "player": playerID, "card": card.String()}).Info("face-down flip missed, forcing pickup")
		res.PickedUp = s.pickup(st, true)
		return res, nil
	}

	if reason, ok := s.tower.PurifyReasonFor(card); ok {
		removed := s.tower.Purify(reason)
		res.Purified = reason
		s.fireEvent(GameEvent{Type: EventPlayerPlay, PlayerID: playerID, Card: &card, Payload: map[string]interface{}{"blind": blind}})
		s.firePurified(playerID, reason, removed)
	} else {
		size := s.tower.Append(card, playerID, now)
		s.fireEvent(GameEvent{Type: EventPlayerPlay, PlayerID: playerID, Card: &card, Payload: map[string]interface{}{"blind": blind, "tower": size}})
	}

	s.resolveEffect(card, idx, targetID)

	res.Won = st.HasWon()
	res.TurnEnded = true
	if s.checkEnd() {
		return res, nil
	}
	s.nextTurn()
	return res, nil
}

// TakePile lets the current player pick up the tower voluntarily. It has
// the same effect as a forced pickup: the player keeps the turn and plays
// on from their hand. An empty tower is a no-op reported as ErrEmptyPile.
func (s *Session) TakePile(playerID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPlaying {
		return 0, fmt.Errorf("%w: session %s is %s", engine.ErrNotPlaying, s.ID, s.status)
	}
	idx := s.seatIndex(playerID)
	if idx < 0 {
		return 0, fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, playerID)
	}
	if idx != s.normalizeIndex(s.current) {
		return 0, fmt.Errorf("%w: it is %s's turn", engine.ErrNotCurrentTurn, s.currentSeat().ID)
	}
	if s.tower.Size() == 0 {
		return 0, engine.ErrEmptyPile
	}
	return s.pickup(s.seats[idx], false), nil
}

// QueryPlayableCards returns the cards of the player's current-phase pool
// the tower would accept right now. Face-down pools report nothing.
// It never mutates the session.
func (s *Session) QueryPlayableCards(playerID uuid.UUID) ([]engine.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.seatIndex(playerID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, playerID)
	}
	if s.status != StatusPlaying {
		return nil, nil
	}
	st := s.seats[idx]
	anyAllowed := s.anyCardAllowed && idx == s.normalizeIndex(s.current)
	pool := st.CurrentPool()
	var out []engine.Card
	for _, i := range st.PlayableIndexes(&s.tower, anyAllowed) {
		out = append(out, pool[i])
	}
	return out, nil
}

// firePurified announces a cleared tower.
// Assumes lock is held by caller.
func (s *Session) firePurified(playerID uuid.UUID, reason engine.PurifyReason, removed int) {
	log.WithFields(log.Fields{"session": s.ID, "player": playerID, "reason": reason.String(), "removed": removed}).Info("tower purified")
	s.fireEvent(GameEvent{
		Type:     EventTowerPurified,
		PlayerID: playerID,
		Payload:  map[string]interface{}{"reason": reason.String(), "removed": removed},
	})
}
