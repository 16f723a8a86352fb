package engine

import (
	"fmt"

	"github.com/google/uuid"
)

// Rank is a card's numeric rank, 1 (Ace) through 13 (King).
type Rank uint8

// Rank constants.
const (
	RankAce   Rank = 1
	RankTwo   Rank = 2
	RankThree Rank = 3
	RankFour  Rank = 4
	RankFive  Rank = 5
	RankSix   Rank = 6
	RankSeven Rank = 7
	RankEight Rank = 8
	RankNine  Rank = 9
	RankTen   Rank = 10
	RankJack  Rank = 11
	RankQueen Rank = 12
	RankKing  Rank = 13
)

// Valid reports whether r lies in 1..13.
func (r Rank) Valid() bool { return r >= RankAce && r <= RankKing }

// EffectKind tags the effect a card resolves when it lands on the tower.
type EffectKind uint8

const (
	EffectNone      EffectKind = iota // 0
	EffectUniversal                   // 1, Two: next player may play anything
	EffectSkip                        // 2, Eight: skip the player two seats ahead
	EffectPurify                      // 3, Ten: purify the tower
	EffectCustom                      // 4: theme-defined, dispatched by CustomID
)

var effectNames = [...]string{
	EffectNone:      "none",
	EffectUniversal: "universal",
	EffectSkip:      "skip",
	EffectPurify:    "purify",
	EffectCustom:    "custom",
}

func (k EffectKind) String() string {
	if int(k) < len(effectNames) {
		return effectNames[k]
	}
	return fmt.Sprintf("effect(%d)", uint8(k))
}

// EffectForRank returns the built-in effect of a rank.
func EffectForRank(r Rank) EffectKind {
	switch r {
	case RankTwo:
		return EffectUniversal
	case RankEight:
		return EffectSkip
	case RankTen:
		return EffectPurify
	default:
		return EffectNone
	}
}

// Card is an immutable rank-tagged descriptor. It carries no behaviour of its
// own beyond rule predicates, so it serializes as plain data.
type Card struct {
	ID       uuid.UUID  `json:"id"`
	Name     string     `json:"name"`
	Rank     Rank       `json:"rank"`
	Effect   EffectKind `json:"effect"`
	CustomID string     `json:"customId,omitempty"`
}

// NewCard builds a card with a fresh ID. Special ranks always carry their
// built-in effect; a non-empty customID tags any other rank as EffectCustom.
func NewCard(name string, rank Rank, customID string) Card {
	c := Card{
		ID:     uuid.New(),
		Name:   name,
		Rank:   rank,
		Effect: EffectForRank(rank),
	}
	if c.Effect == EffectNone && customID != "" {
		c.Effect = EffectCustom
		c.CustomID = customID
	}
	return c
}

// Special reports whether the card is a Two, Eight or Ten.
func (c Card) Special() bool {
	return c.Rank == RankTwo || c.Rank == RankEight || c.Rank == RankTen
}

func (c Card) String() string {
	return fmt.Sprintf("%s(%d)", c.Name, c.Rank)
}

// Phase is the pool a player is currently playing from.
type Phase uint8

const (
	PhaseHand     Phase = iota // 0
	PhaseFaceUp                // 1
	PhaseFaceDown              // 2
)

func (p Phase) String() string {
	switch p {
	case PhaseHand:
		return "hand"
	case PhaseFaceUp:
		return "face_up"
	case PhaseFaceDown:
		return "face_down"
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// PurifyReason records which rule cleared the tower.
type PurifyReason uint8

const (
	PurifyNone       PurifyReason = iota // 0
	PurifyRankTen                        // 1
	PurifyMatchTop                       // 2
	PurifyFourOfKind                     // 3
)

func (r PurifyReason) String() string {
	switch r {
	case PurifyRankTen:
		return "rank_ten"
	case PurifyMatchTop:
		return "match_top"
	case PurifyFourOfKind:
		return "four_of_a_kind"
	}
	return "none"
}
