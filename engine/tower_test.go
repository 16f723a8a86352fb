package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestTowerAppendTop verifies Top tracks the last appended card.
func TestTowerAppendTop(t *testing.T) {
	tw := &Tower{}
	if tw.Top() != nil {
		t.Fatal("empty tower: Top should be nil")
	}
	if n := tw.Append(card(RankThree), uuid.New(), time.Now()); n != 1 {
		t.Errorf("Append size: want 1, got %d", n)
	}
	tw.Append(card(RankJack), uuid.New(), time.Now())
	if top := tw.Top(); top == nil || top.Rank != RankJack {
		t.Errorf("Top: want Jack, got %v", top)
	}
}

// TestTowerPurify verifies the tower empties and the counter advances.
func TestTowerPurify(t *testing.T) {
	tw := towerOf(RankFive, RankFive, RankFive)
	if removed := tw.Purify(PurifyFourOfKind); removed != 3 {
		t.Errorf("Purify removed: want 3, got %d", removed)
	}
	if tw.Size() != 0 || tw.Top() != nil {
		t.Errorf("after Purify: want empty tower, got size %d", tw.Size())
	}
	if tw.PurificationCount() != 1 {
		t.Errorf("PurificationCount: want 1, got %d", tw.PurificationCount())
	}
	if tw.LastPurifyReason() != PurifyFourOfKind {
		t.Errorf("LastPurifyReason: want four_of_a_kind, got %s", tw.LastPurifyReason())
	}

	// Purified fives no longer count toward four-of-a-kind.
	tw.Append(card(RankFive), uuid.New(), time.Now())
	tw.Append(card(RankSix), uuid.New(), time.Now())
	if card(RankFive).WillPurify(tw) {
		t.Error("purification history must not count toward four-of-a-kind")
	}
}

// TestTowerTakeAll verifies take-all returns every card and empties the tower.
func TestTowerTakeAll(t *testing.T) {
	tw := towerOf(RankFour, RankNine)
	cards, ok := tw.TakeAll()
	if !ok || len(cards) != 2 {
		t.Fatalf("TakeAll: want 2 cards, got %d (ok=%v)", len(cards), ok)
	}
	if cards[0].Rank != RankFour || cards[1].Rank != RankNine {
		t.Errorf("TakeAll order: want [4 9], got [%d %d]", cards[0].Rank, cards[1].Rank)
	}
	if tw.Size() != 0 {
		t.Errorf("after TakeAll: want size 0, got %d", tw.Size())
	}

	if _, ok := tw.TakeAll(); ok {
		t.Error("TakeAll on empty tower: want ok=false")
	}
}

// TestTowerCanAccept verifies refusals carry a reason.
func TestTowerCanAccept(t *testing.T) {
	tw := towerOf(RankNine)
	if ok, reason := tw.CanAccept(card(RankFour), false); ok || reason == "" {
		t.Errorf("four on nine: want refusal with reason, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := tw.CanAccept(card(RankFour), true); !ok {
		t.Error("four on nine with universal: want ok")
	}
	if ok, _ := tw.CanAccept(Card{Rank: 14}, true); ok {
		t.Error("rank 14: want refusal")
	}
}

// TestTowerEntriesCopy verifies Entries does not alias the tower.
func TestTowerEntriesCopy(t *testing.T) {
	tw := towerOf(RankSix)
	entries := tw.Entries()
	entries[0].Card.Rank = RankKing
	if tw.Top().Rank != RankSix {
		t.Error("Entries must return a copy")
	}
}
