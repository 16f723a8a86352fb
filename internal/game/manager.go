// internal/game/manager.go
package game

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/engine"
)

// ManagerConfig wires a Manager to its collaborators. Nil collaborators are
// skipped.
type ManagerConfig struct {
	Rules         HouseRules
	Themes        ThemeSource
	Clock         clockwork.Clock
	Historian     Historian
	Results       ResultRecorder
	CustomEffects map[string]CustomEffectFunc
	// Seed, if non-zero, seeds each new session deterministically (Seed, Seed+1, ...).
	Seed uint64
	// OnEvent, if set, receives every event of every session.
	OnEvent func(ev GameEvent)
}

// Manager owns the sessions of one process and exposes the functional
// contract by session ID. Sessions share no lock with one another.
type Manager struct {
	cfg      ManagerConfig
	sessions map[uuid.UUID]*Session
	nextSeed uint64
	pending  sync.WaitGroup // historian and result writes in flight
	mu       sync.RWMutex
}

// SessionSummary is a lobby listing entry.
type SessionSummary struct {
	SessionID    uuid.UUID `json:"sessionId"`
	Theme        string    `json:"theme"`
	Players      int       `json:"players"`
	MaxPlayers   int       `json:"maxPlayers"`
	Status       Status    `json:"status"`
	LastActivity time.Time `json:"lastActivity"`
}

// NewManager builds an empty manager.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Rules.MaxPlayers == 0 {
		cfg.Rules = DefaultHouseRules()
	}
	return &Manager{
		cfg:      cfg,
		sessions: make(map[uuid.UUID]*Session),
		nextSeed: cfg.Seed,
	}
}

// CreateSession builds a waiting session whose session deck uses themeID
// (empty selects the classic theme).
func (m *Manager) CreateSession(maxPlayers int, themeID string) (uuid.UUID, error) {
	theme := engine.ClassicTheme()
	if themeID != "" && themeID != theme.ID {
		t, ok := m.lookupTheme(themeID)
		if !ok {
			return uuid.Nil, fmt.Errorf("%w: unknown theme %q", engine.ErrInvalidTheme, themeID)
		}
		theme = t
	}

	m.mu.Lock()
	var seed uint64
	if m.nextSeed != 0 {
		seed = m.nextSeed
		m.nextSeed++
	}
	m.mu.Unlock()

	s, err := NewSession(Config{
		MaxPlayers:    maxPlayers,
		Theme:         theme,
		Themes:        m.cfg.Themes,
		Rules:         m.cfg.Rules,
		Clock:         m.cfg.Clock,
		Seed:          seed,
		CustomEffects: m.cfg.CustomEffects,
	})
	if err != nil {
		return uuid.Nil, err
	}
	s.OnEvent = m.onEvent
	s.OnGameEnd = m.onGameEnd

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	log.WithFields(log.Fields{"session": s.ID, "theme": theme.ID, "maxPlayers": s.HouseRules.MaxPlayers}).Info("session created")
	return s.ID, nil
}

// Session returns a session by ID.
func (m *Manager) Session(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", engine.ErrSessionNotFound, id)
	}
	return s, nil
}

// AddPlayer seats a player in a session.
func (m *Manager) AddPlayer(sessionID, playerID uuid.UUID, displayName, themeID string) (engine.Player, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return engine.Player{}, err
	}
	return s.AddPlayer(playerID, displayName, themeID)
}

// SetReady toggles a player's ready flag.
func (m *Manager) SetReady(sessionID, playerID uuid.UUID, ready bool) error {
	s, err := m.Session(sessionID)
	if err != nil {
		return err
	}
	return s.SetReady(playerID, ready)
}

// Start begins play.
func (m *Manager) Start(sessionID uuid.UUID) error {
	s, err := m.Session(sessionID)
	if err != nil {
		return err
	}
	return s.Start()
}

// Play submits a card play.
func (m *Manager) Play(sessionID, playerID uuid.UUID, index int, targetID uuid.UUID) (PlayResult, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return PlayResult{}, err
	}
	return s.Play(playerID, index, targetID)
}

// TakePile performs a voluntary pickup.
func (m *Manager) TakePile(sessionID, playerID uuid.UUID) (int, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return 0, err
	}
	return s.TakePile(playerID)
}

// QueryPlayableCards lists the cards a player could play now.
func (m *Manager) QueryPlayableCards(sessionID, playerID uuid.UUID) ([]engine.Card, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return nil, err
	}
	return s.QueryPlayableCards(playerID)
}

// Snapshot returns a viewer's perspective of a session.
func (m *Manager) Snapshot(sessionID, viewerID uuid.UUID) (PerspectiveState, error) {
	s, err := m.Session(sessionID)
	if err != nil {
		return PerspectiveState{}, err
	}
	return s.Snapshot(viewerID), nil
}

// PublicSessions lists joinable public sessions, most recently active first.
// Sessions in play or finished are never listed.
func (m *Manager) PublicSessions() []SessionSummary {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	var out []SessionSummary
	for _, s := range sessions {
		s.mu.Lock()
		if s.status == StatusWaiting && s.HouseRules.Public && len(s.seats) < s.HouseRules.MaxPlayers {
			out = append(out, SessionSummary{
				SessionID:    s.ID,
				Theme:        s.Theme.ID,
				Players:      len(s.seats),
				MaxPlayers:   s.HouseRules.MaxPlayers,
				Status:       s.status,
				LastActivity: s.lastActivity,
			})
		}
		s.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastActivity.After(out[j].LastActivity)
	})
	return out
}

// Reap drops finished sessions, and waiting sessions idle for longer than
// idle, returning how many were removed.
func (m *Manager) Reap(idle time.Duration) int {
	now := m.cfg.Clock.Now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		s.mu.Lock()
		drop := s.status == StatusFinished ||
			(s.status == StatusWaiting && now.Sub(s.lastActivity) > idle)
		if drop {
			s.cancelTimer()
		}
		s.mu.Unlock()
		if drop {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.WithField("removed", removed).Info("reaped sessions")
	}
	return removed
}

// Drain blocks until every historian and result write issued so far has
// completed or timed out.
func (m *Manager) Drain() {
	m.pending.Wait()
}

func (m *Manager) lookupTheme(id string) (engine.Theme, bool) {
	if m.cfg.Themes == nil {
		return engine.Theme{}, false
	}
	return m.cfg.Themes.Theme(id)
}

// onEvent forwards session events to the historian asynchronously.
// Runs with the session lock held.
func (m *Manager) onEvent(ev GameEvent) {
	if m.cfg.OnEvent != nil {
		m.cfg.OnEvent(ev)
	}
	if m.cfg.Historian == nil {
		return
	}
	m.pending.Add(1)
	go func(ev GameEvent) {
		defer m.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := m.cfg.Historian.Record(ctx, ev); err != nil {
			log.WithError(err).WithFields(log.Fields{"session": ev.SessionID, "seq": ev.Seq}).Error("failed recording action")
		}
	}(ev)
}

// onGameEnd stores the result asynchronously.
// Runs with the session lock held.
func (m *Manager) onGameEnd(res Result) {
	if m.cfg.Results == nil {
		return
	}
	m.pending.Add(1)
	go func(res Result) {
		defer m.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.cfg.Results.RecordResult(ctx, res); err != nil {
			log.WithError(err).WithField("session", res.SessionID).Error("failed storing result")
		}
	}(res)
}
