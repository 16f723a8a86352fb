package engine

import "errors"

// Rejections returned by the engine and session layer. All of them are
// recoverable; callers match them with errors.Is.
var (
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyStarted   = errors.New("session already started")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrNotAllReady      = errors.New("not all players are ready")
	ErrNotCurrentTurn   = errors.New("not your turn")
	ErrInvalidIndex     = errors.New("invalid card index")
	ErrNotPlayable      = errors.New("card is not playable")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrEmptyPile        = errors.New("tower is empty")

	ErrSessionNotFound = errors.New("session not found")
	ErrNotPlaying      = errors.New("session is not in play")
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrTokenExpired    = errors.New("reconnection token expired")
	ErrTokenInvalid    = errors.New("reconnection token invalid")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrRoomFull, "room_full"},
	{ErrAlreadyStarted, "already_started"},
	{ErrNotEnoughPlayers, "not_enough_players"},
	{ErrNotAllReady, "not_all_ready"},
	{ErrNotCurrentTurn, "not_current_turn"},
	{ErrInvalidIndex, "invalid_index"},
	{ErrNotPlayable, "not_playable"},
	{ErrPlayerNotFound, "player_not_found"},
	{ErrEmptyPile, "empty_pile"},
	{ErrSessionNotFound, "session_not_found"},
	{ErrNotPlaying, "not_playing"},
	{ErrInvalidTheme, "invalid_theme"},
	{ErrTokenExpired, "token_expired"},
	{ErrTokenInvalid, "token_invalid"},
}

// Code maps a (possibly wrapped) rejection to a stable identifier for
// transports. Unknown errors map to "internal".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
