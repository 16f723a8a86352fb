package engine

import "testing"

// TestEffectForRank verifies the built-in effect of every rank.
func TestEffectForRank(t *testing.T) {
	for r := RankAce; r <= RankKing; r++ {
		want := EffectNone
		switch r {
		case RankTwo:
			want = EffectUniversal
		case RankEight:
			want = EffectSkip
		case RankTen:
			want = EffectPurify
		}
		if got := EffectForRank(r); got != want {
			t.Errorf("EffectForRank(%d) = %s, want %s", r, got, want)
		}
	}
}

// TestCardSpecial verifies that exactly Two, Eight and Ten are special.
func TestCardSpecial(t *testing.T) {
	special := 0
	for r := RankAce; r <= RankKing; r++ {
		if NewCard("x", r, "").Special() {
			special++
		}
	}
	if special != 3 {
		t.Errorf("special ranks: want 3, got %d", special)
	}
}

// TestNewCardCustomEffect verifies custom tags apply only to non-special ranks.
func TestNewCardCustomEffect(t *testing.T) {
	c := NewCard("Lust", RankSix, "mirror")
	if c.Effect != EffectCustom || c.CustomID != "mirror" {
		t.Errorf("custom six: want EffectCustom/mirror, got %s/%q", c.Effect, c.CustomID)
	}

	ten := NewCard("Wrath", RankTen, "mirror")
	if ten.Effect != EffectPurify {
		t.Errorf("custom tag on Ten: want EffectPurify, got %s", ten.Effect)
	}
	if ten.CustomID != "" {
		t.Errorf("custom tag on Ten: want empty CustomID, got %q", ten.CustomID)
	}
}
