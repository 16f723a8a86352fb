package engine

import (
	"errors"
	"testing"
)

func cards(ranks ...Rank) []Card {
	out := make([]Card, len(ranks))
	for i, r := range ranks {
		out[i] = card(r)
	}
	return out
}

// TestPlayCardDrawsOneFromSoulWell verifies a hand play draws exactly one replacement.
func TestPlayCardDrawsOneFromSoulWell(t *testing.T) {
	p := &Player{
		Hand:     cards(RankThree, RankFour, RankFive),
		FaceUp:   cards(RankSix),
		FaceDown: cards(RankSeven),
		SoulWell: cards(RankKing, RankQueen),
	}
	before := p.TotalCards()

	c, err := p.PlayCard(0)
	if err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	if c.Rank != RankThree {
		t.Errorf("played card: want 3, got %d", c.Rank)
	}
	if len(p.Hand) != 3 || p.Hand[2].Rank != RankKing {
		t.Errorf("hand after draw: want 3 cards ending with King, got %v", p.Hand)
	}
	if len(p.SoulWell) != 1 {
		t.Errorf("soul well: want 1, got %d", len(p.SoulWell))
	}
	if p.TotalCards() != before-1 {
		t.Errorf("TotalCards: want %d, got %d", before-1, p.TotalCards())
	}
}

// TestPlayCardNoPaddingAfterSoulWell verifies the hand shrinks once the well is dry.
func TestPlayCardNoPaddingAfterSoulWell(t *testing.T) {
	p := &Player{Hand: cards(RankThree, RankFour), FaceUp: cards(RankSix)}
	if _, err := p.PlayCard(1); err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	if len(p.Hand) != 1 {
		t.Errorf("hand: want 1, got %d", len(p.Hand))
	}
	if p.Phase != PhaseHand {
		t.Errorf("phase: want hand, got %s", p.Phase)
	}
}

// TestPhaseProgression walks a player from hand through face-down to a win.
func TestPhaseProgression(t *testing.T) {
	p := &Player{
		Hand:     cards(RankThree),
		FaceUp:   cards(RankSix),
		FaceDown: cards(RankSeven),
	}

	if _, err := p.PlayCard(0); err != nil {
		t.Fatalf("hand play failed: %v", err)
	}
	if p.Phase != PhaseFaceUp {
		t.Fatalf("phase after hand empties: want face_up, got %s", p.Phase)
	}

	if _, err := p.PlayCard(0); err != nil {
		t.Fatalf("face-up play failed: %v", err)
	}
	if p.Phase != PhaseFaceDown {
		t.Fatalf("phase after face-up empties: want face_down, got %s", p.Phase)
	}
	if p.HasWon() {
		t.Fatal("HasWon: want false with a face-down card left")
	}

	c, err := p.PlayCard(0)
	if err != nil {
		t.Fatalf("face-down play failed: %v", err)
	}
	if c.Rank != RankSeven {
		t.Errorf("face-down card: want 7, got %d", c.Rank)
	}
	if !p.HasWon() {
		t.Error("HasWon: want true with all pools empty")
	}
}

// TestPhaseCascadesPastEmptyFaceUp verifies an empty face-up pool is skipped.
func TestPhaseCascadesPastEmptyFaceUp(t *testing.T) {
	p := &Player{Hand: cards(RankThree), FaceDown: cards(RankSeven)}
	if _, err := p.PlayCard(0); err != nil {
		t.Fatalf("PlayCard failed: %v", err)
	}
	if p.Phase != PhaseFaceDown {
		t.Errorf("phase: want face_down, got %s", p.Phase)
	}
}

// TestPlayCardInvalidIndex verifies out-of-range indexes are rejected without mutation.
func TestPlayCardInvalidIndex(t *testing.T) {
	p := &Player{Hand: cards(RankThree)}
	for _, idx := range []int{-1, 1, 7} {
		if _, err := p.PlayCard(idx); !errors.Is(err, ErrInvalidIndex) {
			t.Errorf("PlayCard(%d): want ErrInvalidIndex, got %v", idx, err)
		}
	}
	if len(p.Hand) != 1 {
		t.Errorf("hand: want 1 card untouched, got %d", len(p.Hand))
	}
}

// TestTakePileRevertsFaceDown verifies the backward transition to hand.
func TestTakePileRevertsFaceDown(t *testing.T) {
	p := &Player{Phase: PhaseFaceDown, FaceDown: cards(RankSeven, RankEight)}
	pile := cards(RankNine, RankFour)
	before := p.TotalCards()

	p.TakePile(pile)
	if p.Phase != PhaseHand {
		t.Errorf("phase: want hand, got %s", p.Phase)
	}
	if p.TotalCards() != before+len(pile) {
		t.Errorf("TotalCards: want %d, got %d", before+len(pile), p.TotalCards())
	}

	// Taking nothing leaves the phase alone.
	q := &Player{Phase: PhaseFaceDown, FaceDown: cards(RankSeven)}
	q.TakePile(nil)
	if q.Phase != PhaseFaceDown {
		t.Errorf("empty pickup: want face_down, got %s", q.Phase)
	}
}

// TestTakePileFromFaceUp verifies a face-up player also returns to the hand
// and plays the picked-up cards before the remaining face-up ones.
func TestTakePileFromFaceUp(t *testing.T) {
	p := &Player{Phase: PhaseFaceUp, FaceUp: cards(RankThree, RankFive), FaceDown: cards(RankKing)}
	p.TakePile(cards(RankNine))
	if p.Phase != PhaseHand {
		t.Fatalf("phase: want hand, got %s", p.Phase)
	}
	if len(p.FaceUp) != 2 {
		t.Errorf("FaceUp: want 2 untouched, got %d", len(p.FaceUp))
	}

	c, err := p.PlayCard(0)
	if err != nil {
		t.Fatalf("PlayCard: %v", err)
	}
	if c.Rank != RankNine {
		t.Errorf("played: want Nine from hand, got %s", c)
	}
	if p.Phase != PhaseFaceUp {
		t.Errorf("phase after emptying hand: want face_up, got %s", p.Phase)
	}
}
