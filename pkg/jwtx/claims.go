package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token TTLs. Both can be overridden through configuration.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// ClaimsVersion is the current claims layout. Tokens carrying any other
// version are rejected as invalid.
const ClaimsVersion = 1

// TokenType separates access from refresh tokens so one can't stand in for
// the other even though they share a signing secret.
type TokenType string

const (
	TypeAccess  TokenType = "access"
	TypeRefresh TokenType = "refresh"
)

// Claims is the fixed payload of every token we sign.
type Claims struct {
	jwt.RegisteredClaims

	Version int       `json:"ver"`
	Type    TokenType `json:"typ"`
	UserID  string    `json:"userId"`
	Email   string    `json:"email"`
	Role    string    `json:"role"`
}

// NewClaims builds claims for a principal. Timing fields are filled in by
// Codec.Issue.
func NewClaims(typ TokenType, userID, email, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: userID,
			ID:      NewJTI(),
		},
		Version: ClaimsVersion,
		Type:    typ,
		UserID:  userID,
		Email:   email,
		Role:    role,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim. It keeps
// two tokens minted for the same user in the same second distinct.
func NewJTI() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// validateShape checks that every required claim is present and coherent.
func (c *Claims) validateShape() error {
	switch {
	case c.Version != ClaimsVersion:
		return ErrInvalidClaim
	case c.Type != TypeAccess && c.Type != TypeRefresh:
		return ErrInvalidClaim
	case c.UserID == "" || c.Subject != c.UserID:
		return ErrInvalidClaim
	case c.Email == "" || c.Role == "":
		return ErrInvalidClaim
	case c.ExpiresAt == nil || c.IssuedAt == nil:
		return ErrInvalidClaim
	}
	return nil
}

// validateTiming reports ErrExpired once now is past exp (plus leeway), and
// rejects tokens issued in the future.
func (c *Claims) validateTiming(now time.Time, leeway time.Duration) error {
	if now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if now.Add(leeway).Before(c.IssuedAt.Time) {
		return ErrInvalidClaim
	}
	return nil
}
