// internal/game/game.go
package game

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/engine"
)

// Status is the session lifecycle state.
type Status uint8

const (
	StatusWaiting  Status = iota // 0
	StatusPlaying                // 1
	StatusFinished               // 2
)

func (s Status) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	case StatusFinished:
		return "finished"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// MarshalText renders the status by name in snapshots.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// HouseRules holds the configurable session settings.
type HouseRules struct {
	MaxPlayers   int               `json:"maxPlayers"`
	TurnTimerSec int               `json:"turnTimerSec"` // 0 disables the turn deadline
	Public       bool              `json:"public"`       // listed by Manager.PublicSessions
	Deal         engine.HouseRules `json:"-"`
}

// DefaultHouseRules returns the standard session settings.
func DefaultHouseRules() HouseRules {
	return HouseRules{
		MaxPlayers:   4,
		TurnTimerSec: 15,
		Public:       true,
		Deal:         engine.DefaultHouseRules(),
	}
}

// ThemeSource resolves a player's deck selection to a theme.
type ThemeSource interface {
	Theme(id string) (engine.Theme, bool)
}

// Result is the outcome of a finished session.
type Result struct {
	SessionID  uuid.UUID   `json:"sessionId"`
	WinnerID   uuid.UUID   `json:"winnerId"`
	SinnerID   uuid.UUID   `json:"sinnerId"` // Nil if everyone finished together
	Finishers  []uuid.UUID `json:"finishers"`
	Turns      int         `json:"turns"`
	Purified   int         `json:"purified"`
	StartedAt  time.Time   `json:"startedAt"`
	FinishedAt time.Time   `json:"finishedAt"`
}

// Config carries everything needed to build a session.
type Config struct {
	MaxPlayers    int
	Theme         engine.Theme // session deck theme
	Themes        ThemeSource  // personal deck lookups; nil accepts only Theme
	Rules         HouseRules
	Clock         clockwork.Clock
	Seed          uint64 // 0 picks a random seed
	CustomEffects map[string]CustomEffectFunc
}

// seat is one joined participant.
type seat struct {
	*engine.Player
	Theme engine.Theme
	Ready bool
}

// Session is one authoritative game. Every exported method takes the session
// lock; callbacks (OnEvent, OnGameEnd) run with the lock HELD and must not
// call back into the session.
type Session struct {
	ID         uuid.UUID
	HouseRules HouseRules
	Theme      engine.Theme

	seats []*seat
	tower engine.Tower

	current        int
	turnNumber     int
	turnDeadline   time.Time
	pendingSkip    int  // seat index to bypass once, -1 if none
	anyCardAllowed bool // a Two opened the floor for the current player
	universalFresh bool // the Two was just played and the flag survives one nextTurn

	finishers []uuid.UUID // seat order within each detection pass
	winner    uuid.UUID
	sinner    uuid.UUID
	status    Status

	createdAt    time.Time
	startedAt    time.Time
	lastActivity time.Time
	actionIndex  int

	themes        ThemeSource
	clock         clockwork.Clock
	turnTimer     clockwork.Timer
	rng           *rand.Rand
	customEffects map[string]CustomEffectFunc

	OnEvent   func(ev GameEvent) // Receives every event, in order.
	OnGameEnd func(res Result)   // Called once when the session finishes.

	mu sync.Mutex
}

// NewSession builds a waiting session.
func NewSession(cfg Config) (*Session, error) {
	if cfg.Rules.Deal == (engine.HouseRules{}) {
		cfg.Rules.Deal = engine.DefaultHouseRules()
	}
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = cfg.Rules.MaxPlayers
	}
	if cfg.MaxPlayers < 2 || cfg.MaxPlayers > engine.MaxPlayers {
		return nil, fmt.Errorf("max players must be between 2 and %d, got %d", engine.MaxPlayers, cfg.MaxPlayers)
	}
	if cfg.Theme.ID == "" {
		cfg.Theme = engine.ClassicTheme()
	}
	if err := cfg.Theme.Validate(); err != nil {
		return nil, err
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	cfg.Rules.MaxPlayers = cfg.MaxPlayers

	now := cfg.Clock.Now()
	s := &Session{
		ID:            uuid.New(),
		HouseRules:    cfg.Rules,
		Theme:         cfg.Theme,
		pendingSkip:   -1,
		status:        StatusWaiting,
		createdAt:     now,
		lastActivity:  now,
		themes:        cfg.Themes,
		clock:         cfg.Clock,
		rng:           engine.NewRand(cfg.Seed),
		customEffects: cfg.CustomEffects,
	}
	return s, nil
}

// Status returns the lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// AddPlayer seats a player with their chosen theme (empty selects the
// session theme). Re-adding a seated player returns their current state.
func (s *Session) AddPlayer(playerID uuid.UUID, displayName, themeID string) (engine.Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st := s.seatByID(playerID); st != nil {
		log.Debugf("Game %s: Player %s already seated.", s.ID, playerID)
		return copyPlayer(st.Player), nil
	}
	if s.status != StatusWaiting {
		return engine.Player{}, fmt.Errorf("%w: session %s is %s", engine.ErrAlreadyStarted, s.ID, s.status)
	}
	if len(s.seats) >= s.HouseRules.MaxPlayers {
		return engine.Player{}, fmt.Errorf("%w: %d of %d seats taken", engine.ErrRoomFull, len(s.seats), s.HouseRules.MaxPlayers)
	}
	theme, err := s.resolveTheme(themeID)
	if err != nil {
		return engine.Player{}, err
	}

	st := &seat{
		Player: &engine.Player{ID: playerID, Name: displayName, Phase: engine.PhaseHand},
		Theme:  theme,
	}
	s.seats = append(s.seats, st)
	s.touch()
	log.WithFields(log.Fields{"session": s.ID, "player": playerID, "theme": theme.ID}).Info("player joined")
	s.fireEvent(GameEvent{Type: EventPlayerJoin, PlayerID: playerID, Payload: map[string]interface{}{"name": displayName, "theme": theme.ID}})
	return copyPlayer(st.Player), nil
}

// RemovePlayer frees a seat before the session starts.
func (s *Session) RemovePlayer(playerID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return fmt.Errorf("%w: cannot leave session %s", engine.ErrAlreadyStarted, s.ID)
	}
	idx := s.seatIndex(playerID)
	if idx < 0 {
		return fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, playerID)
	}
	s.seats = append(s.seats[:idx], s.seats[idx+1:]...)
	s.touch()
	s.fireEvent(GameEvent{Type: EventPlayerLeave, PlayerID: playerID})
	return nil
}

// SetReady toggles a waiting player's ready flag.
func (s *Session) SetReady(playerID uuid.UUID, ready bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return fmt.Errorf("%w: session %s is %s", engine.ErrAlreadyStarted, s.ID, s.status)
	}
	st := s.seatByID(playerID)
	if st == nil {
		return fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, playerID)
	}
	st.Ready = ready
	s.touch()
	s.fireEvent(GameEvent{Type: EventPlayerReady, PlayerID: playerID, Payload: map[string]interface{}{"ready": ready}})
	return nil
}

// Start deals every seat and begins the first turn.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusWaiting {
		return fmt.Errorf("%w: session %s is %s", engine.ErrAlreadyStarted, s.ID, s.status)
	}
	if len(s.seats) < 2 {
		return fmt.Errorf("%w: have %d, need 2", engine.ErrNotEnoughPlayers, len(s.seats))
	}
	for _, st := range s.seats {
		if !st.Ready {
			return fmt.Errorf("%w: %s is not ready", engine.ErrNotAllReady, st.ID)
		}
	}

	deal := s.HouseRules.Deal
	players := make([]*engine.Player, len(s.seats))
	for i, st := range s.seats {
		personal := st.Theme.PersonalDeck(int(deal.PersonalDeckSize), s.rng)
		p, err := engine.NewPlayer(st.ID, st.Name, personal, deal)
		if err != nil {
			return fmt.Errorf("dealing %s: %w", st.ID, err)
		}
		players[i] = p
	}
	for i, st := range s.seats {
		st.Player = players[i]
	}
	if deal.DealSessionDeck {
		engine.DealSoulWells(players, s.Theme.SessionDeck(s.rng))
	}

	s.status = StatusPlaying
	s.startedAt = s.clock.Now()
	s.current = 0
	s.touch()
	log.WithFields(log.Fields{"session": s.ID, "players": len(s.seats)}).Info("session started")
	s.fireEvent(GameEvent{Type: EventGameStart, Payload: map[string]interface{}{"players": len(s.seats)}})

	s.startTurn()
	return nil
}

// Close stops the turn deadline. A finished or abandoned session holds no
// timers after Close.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimer()
}

// resolveTheme looks up a deck selection.
// Assumes lock is held by caller.
func (s *Session) resolveTheme(themeID string) (engine.Theme, error) {
	if themeID == "" || themeID == s.Theme.ID {
		return s.Theme, nil
	}
	if s.themes != nil {
		if t, ok := s.themes.Theme(themeID); ok {
			return t, nil
		}
	}
	return engine.Theme{}, fmt.Errorf("%w: unknown theme %q", engine.ErrInvalidTheme, themeID)
}

// seatIndex returns the seat of playerID, or -1.
// Assumes lock is held by caller.
func (s *Session) seatIndex(playerID uuid.UUID) int {
	for i, st := range s.seats {
		if st.ID == playerID {
			return i
		}
	}
	return -1
}

// seatByID finds a seat by player ID.
// Assumes lock is held by caller.
func (s *Session) seatByID(playerID uuid.UUID) *seat {
	if i := s.seatIndex(playerID); i >= 0 {
		return s.seats[i]
	}
	return nil
}

func (s *Session) touch() {
	s.lastActivity = s.clock.Now()
}

// fireEvent stamps and delivers an event.
// Assumes lock is held by caller.
func (s *Session) fireEvent(ev GameEvent) {
	s.actionIndex++
	ev.SessionID = s.ID
	ev.Seq = s.actionIndex
	ev.Turn = s.turnNumber
	ev.At = s.clock.Now()
	if s.OnEvent != nil {
		s.OnEvent(ev)
	}
}

// copyPlayer returns a deep copy so callers never alias session pools.
func copyPlayer(p *engine.Player) engine.Player {
	cp := *p
	cp.Hand = append([]engine.Card(nil), p.Hand...)
	cp.FaceUp = append([]engine.Card(nil), p.FaceUp...)
	cp.FaceDown = append([]engine.Card(nil), p.FaceDown...)
	cp.SoulWell = append([]engine.Card(nil), p.SoulWell...)
	return cp
}

// Historian records session events for replay and audit.
type Historian interface {
	Record(ctx context.Context, ev GameEvent) error
}

// ResultRecorder stores the outcome of finished sessions.
type ResultRecorder interface {
	RecordResult(ctx context.Context, res Result) error
}
