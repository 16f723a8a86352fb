// internal/game/special_actions.go
package game

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/engine"
)

// CustomEffectFunc resolves a theme-defined effect. It runs with the session
// lock HELD and may only act through the EffectContext.
type CustomEffectFunc func(ec *EffectContext)

// EffectContext is the view of a session handed to an effect.
type EffectContext struct {
	Card     engine.Card
	ActorID  uuid.UUID
	TargetID uuid.UUID // Nil unless the play named a target

	s     *Session
	actor int
}

// AllowAnyCard lets the next player play any rank.
func (ec *EffectContext) AllowAnyCard() {
	ec.s.anyCardAllowed = true
	ec.s.universalFresh = true
}

// SkipSeatsAhead marks the player n seats after the actor to be bypassed once.
func (ec *EffectContext) SkipSeatsAhead(n int) {
	if len(ec.s.seats) == 0 {
		return
	}
	ec.s.pendingSkip = (ec.actor + n) % len(ec.s.seats)
}

// PurifyTower clears the tower and closes any open floor.
func (ec *EffectContext) PurifyTower() {
	ec.s.anyCardAllowed = false
	ec.s.universalFresh = false
	if ec.s.tower.Size() == 0 {
		return
	}
	removed := ec.s.tower.Purify(engine.PurifyRankTen)
	ec.s.firePurified(ec.ActorID, engine.PurifyRankTen, removed)
}

// Players returns the seated player IDs in seat order.
func (ec *EffectContext) Players() []uuid.UUID {
	out := make([]uuid.UUID, len(ec.s.seats))
	for i, st := range ec.s.seats {
		out[i] = st.ID
	}
	return out
}

type effectFunc func(ec *EffectContext)

// effectTable dispatches the built-in effect kinds.
var effectTable = map[engine.EffectKind]effectFunc{
	engine.EffectUniversal: func(ec *EffectContext) { ec.AllowAnyCard() },
	engine.EffectSkip:      func(ec *EffectContext) { ec.SkipSeatsAhead(2) },
	engine.EffectPurify:    func(ec *EffectContext) { ec.PurifyTower() },
}

// resolveEffect runs the effect of a card that just landed.
// Assumes lock is held by caller.
func (s *Session) resolveEffect(card engine.Card, actor int, targetID uuid.UUID) {
	if card.Effect == engine.EffectNone {
		return
	}
	ec := &EffectContext{Card: card, ActorID: s.seats[actor].ID, TargetID: targetID, s: s, actor: actor}

	if card.Effect == engine.EffectCustom {
		fn, ok := s.customEffects[card.CustomID]
		if !ok {
			log.WithFields(log.Fields{"session": s.ID, "custom": card.CustomID}).Warn("no handler for custom effect")
			return
		}
		fn(ec)
	} else if fn, ok := effectTable[card.Effect]; ok {
		fn(ec)
	} else {
		log.WithFields(log.Fields{"session": s.ID, "effect": card.Effect.String()}).Warn("unknown effect kind")
		return
	}

	payload := map[string]interface{}{"effect": card.Effect.String()}
	if card.Effect == engine.EffectSkip && s.pendingSkip >= 0 {
		payload["skip"] = s.seats[s.pendingSkip].ID.String()
	}
	if card.CustomID != "" {
		payload["custom"] = card.CustomID
	}
	s.fireEvent(GameEvent{Type: EventEffectResolved, PlayerID: ec.ActorID, Card: &card, Payload: payload})
}
