package engine

import (
	"fmt"
	"math/rand/v2"
)

// CardTemplate describes one rank of a theme.
type CardTemplate struct {
	Name     string `yaml:"name" json:"name"`
	Rank     Rank   `yaml:"rank" json:"rank"`
	CustomID string `yaml:"custom,omitempty" json:"custom,omitempty"`
}

// Theme is a named set of thirteen templates, one per rank.
type Theme struct {
	ID        string         `yaml:"id" json:"id"`
	Name      string         `yaml:"name" json:"name"`
	Templates []CardTemplate `yaml:"cards" json:"cards"`
}

// Validate checks that the theme covers every rank exactly once.
func (t Theme) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTheme)
	}
	if len(t.Templates) != ThemeSize {
		return fmt.Errorf("%w: theme %q has %d cards, want %d", ErrInvalidTheme, t.ID, len(t.Templates), ThemeSize)
	}
	var seen [RankKing + 1]bool
	for _, tpl := range t.Templates {
		if !tpl.Rank.Valid() {
			return fmt.Errorf("%w: theme %q card %q has rank %d", ErrInvalidTheme, t.ID, tpl.Name, tpl.Rank)
		}
		if tpl.CustomID != "" && EffectForRank(tpl.Rank) != EffectNone {
			return fmt.Errorf("%w: theme %q card %q: rank %d has a built-in effect and cannot carry %q", ErrInvalidTheme, t.ID, tpl.Name, tpl.Rank, tpl.CustomID)
		}
		if seen[tpl.Rank] {
			return fmt.Errorf("%w: theme %q repeats rank %d", ErrInvalidTheme, t.ID, tpl.Rank)
		}
		seen[tpl.Rank] = true
	}
	return nil
}

func (t Theme) instantiate(tpl CardTemplate) Card {
	return NewCard(tpl.Name, tpl.Rank, tpl.CustomID)
}

// SessionDeck expands the theme into four stacked copies (52 cards), shuffled.
func (t Theme) SessionDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, SessionDeckSize)
	for range SessionCopies {
		for _, tpl := range t.Templates {
			deck = append(deck, t.instantiate(tpl))
		}
	}
	Shuffle(deck, rng)
	return deck
}

// PersonalDeck draws size distinct templates from the theme, shuffled.
func (t Theme) PersonalDeck(size int, rng *rand.Rand) []Card {
	if size > len(t.Templates) {
		size = len(t.Templates)
	}
	deck := make([]Card, 0, len(t.Templates))
	for _, tpl := range t.Templates {
		deck = append(deck, t.instantiate(tpl))
	}
	Shuffle(deck, rng)
	return deck[:size]
}

var classicNames = [ThemeSize]string{
	"Ace", "Two", "Three", "Four", "Five", "Six", "Seven",
	"Eight", "Nine", "Ten", "Jack", "Queen", "King",
}

// ClassicTheme is the built-in theme with plain rank names.
func ClassicTheme() Theme {
	t := Theme{ID: "classic", Name: "Classic"}
	for i, name := range classicNames {
		t.Templates = append(t.Templates, CardTemplate{Name: name, Rank: Rank(i + 1)})
	}
	return t
}
