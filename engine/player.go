package engine

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Player is one participant's card pools and phase. Win is a predicate over
// the pools, never a stored state.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Hand     []Card    `json:"hand"`
	FaceUp   []Card    `json:"faceUp"`
	FaceDown []Card    `json:"faceDown"`
	SoulWell []Card    `json:"soulWell"`
	Phase    Phase     `json:"phase"`
}

// CurrentPool returns the pool the player plays from in their current phase.
func (p *Player) CurrentPool() []Card {
	switch p.Phase {
	case PhaseFaceUp:
		return p.FaceUp
	case PhaseFaceDown:
		return p.FaceDown
	default:
		return p.Hand
	}
}

// TotalCards returns the combined size of all four pools.
func (p *Player) TotalCards() int {
	return len(p.Hand) + len(p.FaceUp) + len(p.FaceDown) + len(p.SoulWell)
}

// HasWon reports whether every pool is empty.
func (p *Player) HasWon() bool {
	return p.TotalCards() == 0
}

// PlayCard removes the card at index from the current-phase pool.
// In the hand phase one replacement is drawn from the soul well, if any
// remain. Phase transitions are applied before returning.
func (p *Player) PlayCard(index int) (Card, error) {
	pool := p.poolRef()
	if index < 0 || index >= len(*pool) {
		return Card{}, fmt.Errorf("%w: index %d, %s pool has %d cards", ErrInvalidIndex, index, p.Phase, len(*pool))
	}
	card := (*pool)[index]
	*pool = slices.Delete(*pool, index, index+1)

	if p.Phase == PhaseHand && len(p.SoulWell) > 0 {
		p.Hand = append(p.Hand, p.SoulWell[0])
		p.SoulWell = p.SoulWell[1:]
	}
	p.advancePhase()
	return card, nil
}

// TakePile adds picked-up tower cards to the hand. Any pickup returns the
// player to the hand phase, since those cards must be shed first.
func (p *Player) TakePile(cards []Card) {
	if len(cards) == 0 {
		return
	}
	p.Hand = append(p.Hand, cards...)
	p.Phase = PhaseHand
}

// advancePhase moves forward through exhausted pools.
func (p *Player) advancePhase() {
	for {
		switch {
		case p.Phase == PhaseHand && len(p.Hand) == 0 && len(p.SoulWell) == 0:
			p.Phase = PhaseFaceUp
		case p.Phase == PhaseFaceUp && len(p.FaceUp) == 0:
			p.Phase = PhaseFaceDown
		default:
			return
		}
	}
}

func (p *Player) poolRef() *[]Card {
	switch p.Phase {
	case PhaseFaceUp:
		return &p.FaceUp
	case PhaseFaceDown:
		return &p.FaceDown
	default:
		return &p.Hand
	}
}
