// internal/game/events.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/towerofsins/engine"
)

// GameEventType names a session event delivered through OnEvent.
type GameEventType string

// Event types. Card details are only attached where every seat may see them.
const (
	EventPlayerJoin     GameEventType = "player_join"
	EventPlayerLeave    GameEventType = "player_leave"
	EventPlayerReady    GameEventType = "player_ready"
	EventGameStart      GameEventType = "game_start"
	EventPlayerTurn     GameEventType = "game_player_turn"
	EventPlayerPlay     GameEventType = "player_play"
	EventTowerPurified  GameEventType = "tower_purified"
	EventPlayerPickup   GameEventType = "player_pickup"    // Payload "forced" tells voluntary from forced.
	EventTurnSkipped    GameEventType = "player_turn_skip" // An Eight bypassed this player.
	EventTurnTimeout    GameEventType = "player_timeout"   // Deadline expired, turn forfeited.
	EventEffectResolved GameEventType = "effect_resolved"
	EventPlayerWon      GameEventType = "player_won"
	EventGameEnd        GameEventType = "game_end"
)

// GameEvent is one ordered entry of a session's history.
type GameEvent struct {
	Type      GameEventType          `json:"type"`
	SessionID uuid.UUID              `json:"sessionId"`
	Seq       int                    `json:"seq"`
	Turn      int                    `json:"turn"`
	At        time.Time              `json:"at"`
	PlayerID  uuid.UUID              `json:"playerId,omitempty"`
	Card      *engine.Card           `json:"card,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
