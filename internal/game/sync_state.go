// internal/game/sync_state.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/jason-s-yu/towerofsins/engine"
)

// PlayerView is one player's state as seen by a particular viewer.
type PlayerView struct {
	PlayerID      uuid.UUID     `json:"playerId"`
	Name          string        `json:"name"`
	Theme         string        `json:"theme"`
	Ready         bool          `json:"ready"`
	Phase         string        `json:"phase"`
	HandSize      int           `json:"handSize"`
	FaceUp        []engine.Card `json:"faceUp"` // face-up cards are public
	FaceDownSize  int           `json:"faceDownSize"`
	SoulWellSize  int           `json:"soulWellSize"`
	Won           bool          `json:"won"`
	IsCurrentTurn bool          `json:"isCurrentTurn"`
	// Hand is populated only for the viewer's own seat.
	Hand []engine.Card `json:"hand,omitempty"`
}

// PerspectiveState is a read-only snapshot of a session for one viewer.
type PerspectiveState struct {
	SessionID         uuid.UUID    `json:"sessionId"`
	Status            Status       `json:"status"`
	ViewerID          uuid.UUID    `json:"viewerId"`
	CurrentPlayerID   uuid.UUID    `json:"currentPlayerId"`
	TurnNumber        int          `json:"turnNumber"`
	TurnDeadline      *time.Time   `json:"turnDeadline,omitempty"`
	TowerSize         int          `json:"towerSize"`
	TowerTop          *engine.Card `json:"towerTop,omitempty"`
	PurificationCount int          `json:"purificationCount"`
	AnyCardAllowed    bool         `json:"anyCardAllowed"`
	PendingSkipID     uuid.UUID    `json:"pendingSkipId"`
	WinnerID          uuid.UUID    `json:"winnerId"`
	SinnerID          uuid.UUID    `json:"sinnerId"`
	Players           []PlayerView `json:"players"`
	HouseRules        HouseRules   `json:"houseRules"`
}

// Snapshot returns the session from viewerID's perspective: their own hand
// is revealed, every other hidden pool is reported as a count. A viewer who
// is not seated (a spectator) sees counts only.
func (s *Session) Snapshot(viewerID uuid.UUID) PerspectiveState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ps := PerspectiveState{
		SessionID:         s.ID,
		Status:            s.status,
		ViewerID:          viewerID,
		TurnNumber:        s.turnNumber,
		TowerSize:         s.tower.Size(),
		TowerTop:          s.tower.Top(),
		PurificationCount: s.tower.PurificationCount(),
		AnyCardAllowed:    s.anyCardAllowed,
		WinnerID:          s.winner,
		SinnerID:          s.sinner,
		HouseRules:        s.HouseRules,
	}
	if !s.turnDeadline.IsZero() {
		d := s.turnDeadline
		ps.TurnDeadline = &d
	}
	playing := s.status == StatusPlaying && len(s.seats) > 0
	if playing {
		ps.CurrentPlayerID = s.currentSeat().ID
	}
	if s.pendingSkip >= 0 && s.pendingSkip < len(s.seats) {
		ps.PendingSkipID = s.seats[s.pendingSkip].ID
	}

	ps.Players = make([]PlayerView, len(s.seats))
	for i, st := range s.seats {
		pv := PlayerView{
			PlayerID:      st.ID,
			Name:          st.Name,
			Theme:         st.Theme.ID,
			Ready:         st.Ready,
			Phase:         st.Phase.String(),
			HandSize:      len(st.Hand),
			FaceUp:        append([]engine.Card(nil), st.FaceUp...),
			FaceDownSize:  len(st.FaceDown),
			SoulWellSize:  len(st.SoulWell),
			Won:           s.status != StatusWaiting && st.HasWon(),
			IsCurrentTurn: playing && ps.CurrentPlayerID == st.ID,
		}
		if st.ID == viewerID {
			pv.Hand = append([]engine.Card(nil), st.Hand...)
		}
		ps.Players[i] = pv
	}
	return ps
}
