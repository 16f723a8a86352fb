// Package engine implements the Tower of Sins card rules.
//
// It holds no locks and schedules nothing: every type here is plain data
// mutated by a single owner. The session layer (internal/game) serializes
// access and drives turns.
package engine

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

const (
	MaxPlayers      = 8
	ThemeSize       = 13
	SessionCopies   = 4
	SessionDeckSize = ThemeSize * SessionCopies
)

// NewRand returns the deterministic RNG used for shuffling a session's decks.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Shuffle performs an in-place Fisher-Yates shuffle.
func Shuffle(cards []Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// NewPlayer deals a personal deck into a fresh player.
// Face-down cards are taken first, then face-up, then the hand; whatever
// remains seeds the soul well.
func NewPlayer(id uuid.UUID, name string, personal []Card, rules HouseRules) (*Player, error) {
	need := int(rules.FaceDownCount) + int(rules.FaceUpCount) + int(rules.HandSize)
	if len(personal) < need {
		return nil, fmt.Errorf("personal deck has %d cards, need at least %d", len(personal), need)
	}

	p := &Player{ID: id, Name: name, Phase: PhaseHand}
	off := 0
	take := func(n uint8) []Card {
		out := make([]Card, int(n))
		copy(out, personal[off:off+int(n)])
		off += int(n)
		return out
	}
	p.FaceDown = take(rules.FaceDownCount)
	p.FaceUp = take(rules.FaceUpCount)
	p.Hand = take(rules.HandSize)
	p.SoulWell = append([]Card(nil), personal[off:]...)
	return p, nil
}

// DealSoulWells distributes the session deck round-robin into the players'
// soul wells, starting with the first seat.
func DealSoulWells(players []*Player, deck []Card) {
	if len(players) == 0 {
		return
	}
	for i, c := range deck {
		p := players[i%len(players)]
		p.SoulWell = append(p.SoulWell, c)
	}
}
