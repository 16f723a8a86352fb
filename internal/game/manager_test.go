// internal/game/manager_test.go
package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jason-s-yu/towerofsins/engine"
)

type fakeHistorian struct {
	mu     sync.Mutex
	events []GameEvent
}

func (f *fakeHistorian) Record(_ context.Context, ev GameEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeHistorian) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeResults struct {
	mu      sync.Mutex
	results []Result
}

func (f *fakeResults) RecordResult(_ context.Context, res Result) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, res)
	return nil
}

func (f *fakeResults) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.results)
}

type themeMap map[string]engine.Theme

func (m themeMap) Theme(id string) (engine.Theme, bool) {
	t, ok := m[id]
	return t, ok
}

func newTestManager(t *testing.T) (*Manager, clockwork.FakeClock, *fakeHistorian, *fakeResults) {
	t.Helper()
	fc := clockwork.NewFakeClock()
	h := &fakeHistorian{}
	r := &fakeResults{}
	m := NewManager(ManagerConfig{Clock: fc, Historian: h, Results: r, Seed: 7})
	return m, fc, h, r
}

func TestManagerUnknownSession(t *testing.T) {
	m, _, _, _ := newTestManager(t)
	missing := uuid.New()

	_, err := m.Session(missing)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	_, err = m.AddPlayer(missing, uuid.New(), "A", "")
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	_, err = m.Play(missing, uuid.New(), 0, uuid.Nil)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	_, err = m.Snapshot(missing, uuid.New())
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
}

func TestManagerCreateSessionThemes(t *testing.T) {
	fc := clockwork.NewFakeClock()
	gothic := engine.ClassicTheme()
	gothic.ID, gothic.Name = "gothic", "Gothic"
	m := NewManager(ManagerConfig{Clock: fc, Themes: themeMap{"gothic": gothic}})

	_, err := m.CreateSession(4, "missing")
	assert.ErrorIs(t, err, engine.ErrInvalidTheme)

	id, err := m.CreateSession(4, "gothic")
	require.NoError(t, err)
	s, err := m.Session(id)
	require.NoError(t, err)
	assert.Equal(t, "gothic", s.Theme.ID)

	_, err = m.CreateSession(engine.MaxPlayers+1, "")
	assert.Error(t, err)
}

func TestManagerPlaysThroughAndRecords(t *testing.T) {
	m, _, h, r := newTestManager(t)
	id, err := m.CreateSession(2, "")
	require.NoError(t, err)

	a, b := uuid.New(), uuid.New()
	for _, p := range []uuid.UUID{a, b} {
		_, err := m.AddPlayer(id, p, "P", "")
		require.NoError(t, err)
		require.NoError(t, m.SetReady(id, p, true))
	}
	require.NoError(t, m.Start(id))

	s, err := m.Session(id)
	require.NoError(t, err)
	rig(s, 0, engine.PhaseFaceDown, nil, nil, ranks(engine.RankKing), nil)

	res, err := m.Play(id, a, 0, uuid.Nil)
	require.NoError(t, err)
	assert.True(t, res.Won)

	ps, err := m.Snapshot(id, b)
	require.NoError(t, err)
	assert.Equal(t, a, ps.WinnerID)
	assert.Equal(t, b, ps.SinnerID)

	m.Drain()
	assert.Equal(t, 1, r.count())
	assert.GreaterOrEqual(t, h.count(), 6)
}

func TestPublicSessionsOrderingAndExclusion(t *testing.T) {
	m, fc, _, _ := newTestManager(t)

	older, err := m.CreateSession(2, "")
	require.NoError(t, err)
	fc.Advance(time.Minute)
	newer, err := m.CreateSession(2, "")
	require.NoError(t, err)
	fc.Advance(time.Minute)
	started, err := m.CreateSession(2, "")
	require.NoError(t, err)

	for _, p := range []uuid.UUID{uuid.New(), uuid.New()} {
		_, err := m.AddPlayer(started, p, "P", "")
		require.NoError(t, err)
		require.NoError(t, m.SetReady(started, p, true))
	}
	require.NoError(t, m.Start(started))

	list := m.PublicSessions()
	require.Len(t, list, 2)
	assert.Equal(t, newer, list[0].SessionID)
	assert.Equal(t, older, list[1].SessionID)

	// Activity in the older session moves it to the front.
	fc.Advance(time.Minute)
	_, err = m.AddPlayer(older, uuid.New(), "Late", "")
	require.NoError(t, err)
	list = m.PublicSessions()
	require.Len(t, list, 2)
	assert.Equal(t, older, list[0].SessionID)
	assert.Equal(t, 1, list[0].Players)

	// A full room is not joinable.
	_, err = m.AddPlayer(older, uuid.New(), "Last", "")
	require.NoError(t, err)
	list = m.PublicSessions()
	require.Len(t, list, 1)
	assert.Equal(t, newer, list[0].SessionID)
}

func TestPrivateSessionsUnlisted(t *testing.T) {
	hr := DefaultHouseRules()
	hr.Public = false
	m := NewManager(ManagerConfig{Clock: clockwork.NewFakeClock(), Rules: hr})
	_, err := m.CreateSession(2, "")
	require.NoError(t, err)
	assert.Empty(t, m.PublicSessions())
}

func TestReap(t *testing.T) {
	m, fc, _, _ := newTestManager(t)

	idle, err := m.CreateSession(2, "")
	require.NoError(t, err)
	finished, err := m.CreateSession(2, "")
	require.NoError(t, err)
	a := uuid.New()
	for _, p := range []uuid.UUID{a, uuid.New()} {
		_, err := m.AddPlayer(finished, p, "P", "")
		require.NoError(t, err)
		require.NoError(t, m.SetReady(finished, p, true))
	}
	require.NoError(t, m.Start(finished))
	s, err := m.Session(finished)
	require.NoError(t, err)
	rig(s, 0, engine.PhaseFaceDown, nil, nil, ranks(engine.RankKing), nil)
	_, err = m.Play(finished, a, 0, uuid.Nil)
	require.NoError(t, err)

	fc.Advance(time.Minute)
	fresh, err := m.CreateSession(2, "")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Reap(30*time.Second))
	_, err = m.Session(idle)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	_, err = m.Session(finished)
	assert.ErrorIs(t, err, engine.ErrSessionNotFound)
	_, err = m.Session(fresh)
	assert.NoError(t, err)
}
