// Package session carries an in-progress booking between HTTP requests as
// an HS256 signed JWT.  The server keeps no per-customer state: every
// mutating booking call returns a fresh token holding the new workflow
// state, and the client sends it back on the next call.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/FaizaanMd/cinema-booking/internal/booking"
)

// ErrInvalidToken is returned by Parse for malformed, tampered or expired
// tokens.
var ErrInvalidToken = errors.New("invalid booking token")

const issuer = "cinema-booking"

// Session is one customer's booking in progress.  ID stays the same for
// every token issued along the way and is used as the rate limit key.
type Session struct {
	ID      string
	Booking booking.State
}

// New starts a session with a random id.
func New(st booking.State) Session {
	return Session{ID: uuid.NewString(), Booking: st}
}

// Token is a signed session token and its expiry.
type Token struct {
	Token string    `json:"token"`
	Exp   time.Time `json:"expiresAt"`
}

type claims struct {
	Booking booking.State `json:"booking"`
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewCodec returns a Codec signing with secret.  Tokens expire ttl after
// they are issued.
func NewCodec(secret string, ttl time.Duration) *Codec {
	return &Codec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (c *Codec) TTL() time.Duration { return c.ttl }

// Issue signs s.
func (c *Codec) Issue(s Session) (Token, error) {
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	cl := claims{
		Booking: s.Booking,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        s.ID,
			Issuer:    issuer,
			Subject:   s.Booking.MovieID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign session: %w", err)
	}
	return Token{Token: signed, Exp: exp}, nil
}

// Parse verifies raw and returns the session it carries.
func (c *Codec) Parse(raw string) (Session, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(raw, &cl, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if cl.ID == "" {
		return Session{}, fmt.Errorf("%w: missing session id", ErrInvalidToken)
	}
	return Session{ID: cl.ID, Booking: cl.Booking}, nil
}
