package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TowerEntry is one card on the Tower of Sins along with who placed it.
type TowerEntry struct {
	Card     Card      `json:"card"`
	PlayerID uuid.UUID `json:"playerId"`
	PlacedAt time.Time `json:"placedAt"`
}

// Tower is the shared discard accumulator. It is cleared, never replaced,
// on purification or take-all.
type Tower struct {
	entries       []TowerEntry
	purifications int
	lastReason    PurifyReason
}

// Size returns the number of cards on the tower.
func (t *Tower) Size() int { return len(t.entries) }

// Top returns the last appended card, or nil if the tower is empty.
func (t *Tower) Top() *Card {
	if len(t.entries) == 0 {
		return nil
	}
	c := t.entries[len(t.entries)-1].Card
	return &c
}

// PurificationCount returns how many times the tower has been purified.
func (t *Tower) PurificationCount() int { return t.purifications }

// LastPurifyReason returns the rule behind the most recent purification.
func (t *Tower) LastPurifyReason() PurifyReason { return t.lastReason }

// Entries returns a copy of the tower, bottom first.
func (t *Tower) Entries() []TowerEntry {
	out := make([]TowerEntry, len(t.entries))
	copy(out, t.entries)
	return out
}

// CountRank returns how many cards of rank r are on the tower.
func (t *Tower) CountRank(r Rank) int {
	n := 0
	for _, e := range t.entries {
		if e.Card.Rank == r {
			n++
		}
	}
	return n
}

// Append places a card on the tower and returns the new size.
func (t *Tower) Append(c Card, playerID uuid.UUID, at time.Time) int {
	t.entries = append(t.entries, TowerEntry{Card: c, PlayerID: playerID, PlacedAt: at})
	return len(t.entries)
}

// PurifyReasonFor returns which purification rule placing c would trigger.
// Exactly one reason is reported; rank Ten takes precedence, then a match
// with the top card, then four-of-a-kind accumulation.
func (t *Tower) PurifyReasonFor(c Card) (PurifyReason, bool) {
	if c.Rank == RankTen {
		return PurifyRankTen, true
	}
	if top := t.Top(); top != nil && top.Rank == c.Rank {
		return PurifyMatchTop, true
	}
	if t.CountRank(c.Rank) >= 3 {
		return PurifyFourOfKind, true
	}
	return PurifyNone, false
}

// Purify clears the tower and returns how many cards were removed. Cleared
// cards leave play, so they never count toward later four-of-a-kind checks.
func (t *Tower) Purify(reason PurifyReason) int {
	n := len(t.entries)
	t.entries = nil
	t.purifications++
	t.lastReason = reason
	return n
}

// TakeAll removes every card from the tower. It reports false, without
// error, when the tower is already empty.
func (t *Tower) TakeAll() ([]Card, bool) {
	if len(t.entries) == 0 {
		return nil, false
	}
	cards := make([]Card, len(t.entries))
	for i, e := range t.entries {
		cards[i] = e.Card
	}
	t.entries = nil
	return cards, true
}

// CanAccept reports whether c may be played now; reason explains a refusal.
func (t *Tower) CanAccept(c Card, anyAllowed bool) (bool, string) {
	if !c.Rank.Valid() {
		return false, fmt.Sprintf("rank %d out of range", c.Rank)
	}
	top := t.Top()
	if c.IsPlayableOn(top, anyAllowed) {
		return true, ""
	}
	return false, fmt.Sprintf("rank %d is below top card rank %d", c.Rank, top.Rank)
}
