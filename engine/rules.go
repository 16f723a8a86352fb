package engine

// HouseRules holds the dealing parameters of a session.
type HouseRules struct {
	HandSize         uint8 // cards held in hand while the soul well lasts
	FaceUpCount      uint8
	FaceDownCount    uint8
	PersonalDeckSize uint8 // cards drawn from the player's own theme
	DealSessionDeck  bool  // if true, the 52-card session deck feeds the soul wells
}

// DefaultHouseRules returns the standard Tower of Sins rules.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		HandSize:         3,
		FaceUpCount:      3,
		FaceDownCount:    3,
		PersonalDeckSize: 12,
		DealSessionDeck:  true,
	}
}
