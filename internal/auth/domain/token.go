package domain

import "time"

// TokenPair is what login and refresh hand back. Both values are also set as
// http-only cookies; the body copy is for non-browser clients.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}
