package engine

// IsPlayableOn reports whether c may be placed on top. Special cards are
// always playable; otherwise the rank must meet or beat the top card unless
// the tower is empty or a Two has opened the floor.
func (c Card) IsPlayableOn(top *Card, anyAllowed bool) bool {
	if c.Special() || anyAllowed || top == nil {
		return true
	}
	return c.Rank >= top.Rank
}

// WillPurify reports whether placing c on t would purify the tower.
func (c Card) WillPurify(t *Tower) bool {
	_, ok := t.PurifyReasonFor(c)
	return ok
}

// PlayableIndexes returns the indexes of the player's current-phase pool
// that the tower would accept. Face-down cards are never reported: they are
// played blind.
func (p *Player) PlayableIndexes(t *Tower, anyAllowed bool) []int {
	if p.Phase == PhaseFaceDown {
		return nil
	}
	var out []int
	for i, c := range p.CurrentPool() {
		if ok, _ := t.CanAccept(c, anyAllowed); ok {
			out = append(out, i)
		}
	}
	return out
}

// HasPlayable reports whether any current-phase card can be placed. A
// face-down player always may try, since the cards are unknown to them.
func (p *Player) HasPlayable(t *Tower, anyAllowed bool) bool {
	if p.Phase == PhaseFaceDown {
		return len(p.FaceDown) > 0
	}
	for _, c := range p.CurrentPool() {
		if ok, _ := t.CanAccept(c, anyAllowed); ok {
			return true
		}
	}
	return false
}
