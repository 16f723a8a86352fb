// Package reconnect issues and checks the tokens a disconnected player
// presents to reclaim their seat.
package reconnect

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/jason-s-yu/towerofsins/engine"
)

// DefaultTTL is how long a seat can be reclaimed after a disconnect.
const DefaultTTL = 2 * time.Minute

// Binding is what a valid token proves: a player's seat in a session.
type Binding struct {
	TokenID   string
	PlayerID  uuid.UUID
	SessionID uuid.UUID
	ExpiresAt time.Time
}

type claims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Issuer signs tokens with an HMAC secret. Expiry is checked when a token
// is presented, against the issuer's clock; nothing is swept in the
// background.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clockwork.Clock
}

// NewIssuer builds an issuer. A zero ttl selects DefaultTTL and a nil clock
// the real one.
func NewIssuer(secret []byte, ttl time.Duration, clock clockwork.Clock) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("reconnect: empty token secret")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Issuer{secret: secret, ttl: ttl, clock: clock}, nil
}

// Issue signs a token binding playerID to sessionID.
func (i *Issuer) Issue(playerID, sessionID uuid.UUID) (string, Binding, error) {
	now := i.clock.Now()
	b := Binding{
		TokenID:   uuid.NewString(),
		PlayerID:  playerID,
		SessionID: sessionID,
		ExpiresAt: now.Add(i.ttl).Truncate(time.Second),
	}
	c := claims{
		SessionID: sessionID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        b.TokenID,
			Subject:   playerID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(b.ExpiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", Binding{}, fmt.Errorf("signing reconnect token: %w", err)
	}
	return signed, b, nil
}

// Validate checks a token's signature and expiry and returns its binding.
func (i *Issuer) Validate(token string) (Binding, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return Binding{}, engine.ErrTokenExpired
	}
	if err != nil {
		return Binding{}, fmt.Errorf("%w: %v", engine.ErrTokenInvalid, err)
	}

	playerID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: bad subject", engine.ErrTokenInvalid)
	}
	sessionID, err := uuid.Parse(c.SessionID)
	if err != nil {
		return Binding{}, fmt.Errorf("%w: bad session", engine.ErrTokenInvalid)
	}
	return Binding{
		TokenID:   c.ID,
		PlayerID:  playerID,
		SessionID: sessionID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
