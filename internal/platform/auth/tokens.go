// Package auth issues and verifies the HS256 session tokens that back the
// authentication boundary. The core trusts the member id carried in a
// verified token as the acting identity for all check-in, checkout and
// signup operations.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"clubtracker-backend/internal/domain"
	"clubtracker-backend/internal/platform/config"
)

var ErrInvalidToken = errors.New("invalid session token")

type Tokens struct {
	cfg config.AuthConfig

	now func() time.Time
}

func NewTokens(cfg config.AuthConfig) *Tokens {
	return &Tokens{cfg: cfg, now: func() time.Time { return time.Now().UTC() }}
}

// SetNowForTest overrides the issuing clock for deterministic tests.
func (t *Tokens) SetNowForTest(fn func() time.Time) {
	if fn != nil {
		t.now = fn
	}
}

type sessionClaims struct {
	Admin bool `json:"adm"`
	jwt.RegisteredClaims
}

// Issue creates a signed session token for the member.
func (t *Tokens) Issue(memberID domain.MemberID, admin bool) (string, error) {
	now := t.now()
	claims := sessionClaims{
		Admin: admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   string(memberID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.TokenTTL)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// Session is the verified identity extracted from a bearer token.
type Session struct {
	MemberID domain.MemberID
	Admin    bool
}

// Verify parses and validates a bearer token string.
func (t *Tokens) Verify(raw string) (Session, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(t.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(t.now))
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{MemberID: domain.MemberID(claims.Subject), Admin: claims.Admin}, nil
}
