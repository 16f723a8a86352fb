// Package coordinator maps transport connections to seats. It never touches
// game state directly: everything goes through the session manager's public
// calls, and a dropped connection only unbinds the seat. The turn deadline
// keeps running as if the player were present.
package coordinator

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/jason-s-yu/towerofsins/engine"
	"github.com/jason-s-yu/towerofsins/internal/game"
	"github.com/jason-s-yu/towerofsins/internal/reconnect"
)

// ConnID identifies one transport connection.
type ConnID string

// Sessions is the part of game.Manager the coordinator uses.
type Sessions interface {
	AddPlayer(sessionID, playerID uuid.UUID, displayName, themeID string) (engine.Player, error)
	Snapshot(sessionID, viewerID uuid.UUID) (game.PerspectiveState, error)
}

// Seat is a connection's binding.
type Seat struct {
	SessionID uuid.UUID
	PlayerID  uuid.UUID
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	sessions Sessions
	tokens   *reconnect.Issuer

	mu     sync.Mutex
	conns  map[ConnID]Seat
	bySeat map[Seat]ConnID
	away   map[Seat]string // token ID of the latest token issued per seat
}

// New builds a coordinator over sessions, issuing tokens from tokens.
func New(sessions Sessions, tokens *reconnect.Issuer) *Coordinator {
	return &Coordinator{
		sessions: sessions,
		tokens:   tokens,
		conns:    make(map[ConnID]Seat),
		bySeat:   make(map[Seat]ConnID),
		away:     make(map[Seat]string),
	}
}

// Join seats a player in a session and binds the connection to that seat.
// A player already bound elsewhere is moved to conn.
func (c *Coordinator) Join(conn ConnID, sessionID, playerID uuid.UUID, displayName, themeID string) (engine.Player, error) {
	p, err := c.sessions.AddPlayer(sessionID, playerID, displayName, themeID)
	if err != nil {
		return engine.Player{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	seat := Seat{SessionID: sessionID, PlayerID: playerID}
	c.bind(conn, seat)
	delete(c.away, seat)
	return p, nil
}

// Lookup returns the seat bound to conn.
func (c *Coordinator) Lookup(conn ConnID) (Seat, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.conns[conn]
	return s, ok
}

// Disconnect unbinds conn and returns a token the player can later present
// to Resume. The seat is kept and the session carries on.
func (c *Coordinator) Disconnect(conn ConnID) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	seat, ok := c.conns[conn]
	if !ok {
		return "", fmt.Errorf("%w: connection %s is not seated", engine.ErrPlayerNotFound, conn)
	}
	token, b, err := c.tokens.Issue(seat.PlayerID, seat.SessionID)
	if err != nil {
		return "", err
	}
	delete(c.conns, conn)
	delete(c.bySeat, seat)
	c.away[seat] = b.TokenID
	log.WithFields(log.Fields{"session": seat.SessionID, "player": seat.PlayerID, "expires": b.ExpiresAt}).Info("player disconnected, seat held")
	return token, nil
}

// Resume rebinds a disconnected player to conn and returns their view of
// the session. Each token works once, and only the latest token issued to
// a player is accepted.
func (c *Coordinator) Resume(conn ConnID, token string) (game.PerspectiveState, error) {
	b, err := c.tokens.Validate(token)
	if err != nil {
		return game.PerspectiveState{}, err
	}

	seat := Seat{SessionID: b.SessionID, PlayerID: b.PlayerID}
	c.mu.Lock()
	tokenID, ok := c.away[seat]
	if !ok || tokenID != b.TokenID {
		c.mu.Unlock()
		return game.PerspectiveState{}, fmt.Errorf("%w: token already used or superseded", engine.ErrTokenInvalid)
	}
	delete(c.away, seat)
	c.bind(conn, seat)
	c.mu.Unlock()

	log.WithFields(log.Fields{"session": b.SessionID, "player": b.PlayerID}).Info("player reconnected")
	return c.sessions.Snapshot(b.SessionID, b.PlayerID)
}

// Forget drops every binding for a session, e.g. once it has been reaped.
func (c *Coordinator) Forget(sessionID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for conn, s := range c.conns {
		if s.SessionID == sessionID {
			delete(c.conns, conn)
			delete(c.bySeat, s)
		}
	}
	for seat := range c.away {
		if seat.SessionID == sessionID {
			delete(c.away, seat)
		}
	}
}

// bind attaches conn to seat, replacing any previous connection to the
// same seat and any previous seat of the same connection. A player seated
// in several sessions keeps one binding per session.
// Assumes lock is held by caller.
func (c *Coordinator) bind(conn ConnID, seat Seat) {
	if prev, ok := c.conns[conn]; ok && prev != seat {
		delete(c.bySeat, prev)
	}
	if old, ok := c.bySeat[seat]; ok && old != conn {
		delete(c.conns, old)
	}
	c.conns[conn] = seat
	c.bySeat[seat] = conn
}
