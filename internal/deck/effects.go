package deck

import "github.com/jason-s-yu/towerofsins/internal/game"

// Custom effect IDs used by the built-in themes.
const (
	EffectPenance    = "penance"    // the next player loses their turn
	EffectConfession = "confession" // the next player may play any rank
)

// Effects returns the handlers for the built-in custom effects.
func Effects() map[string]game.CustomEffectFunc {
	return map[string]game.CustomEffectFunc{
		EffectPenance:    func(ec *game.EffectContext) { ec.SkipSeatsAhead(1) },
		EffectConfession: func(ec *game.EffectContext) { ec.AllowAnyCard() },
	}
}
