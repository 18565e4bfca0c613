// Package csrf implements synchronizer tokens bound to a per-client secret
// cookie. The secret never leaves the cookie; the token handed to scripts is a
// salted HMAC of it, so a token lifted from one client is useless to another.
package csrf

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/marketauth/pkg/cryptox"
)

const (
	DefaultCookieName = "_csrf"
	DefaultHeaderName = "X-CSRF-Token"
)

var (
	ErrMissingSecret = errors.New("csrf: secret cookie missing")
	ErrMissingToken  = errors.New("csrf: token header missing")
	ErrBadToken      = errors.New("csrf: token does not match secret")
)

type Protector struct {
	key []byte

	CookieName string
	HeaderName string
	Secure     bool
}

// New returns a Protector signing with key. Secure marks the secret cookie
// as HTTPS-only.
func New(key []byte, secure bool) *Protector {
	return &Protector{
		key:        append([]byte(nil), key...),
		CookieName: DefaultCookieName,
		HeaderName: DefaultHeaderName,
		Secure:     secure,
	}
}

// Issue returns a fresh token for the client. The client's secret cookie is
// reused when present, so tokens issued earlier stay valid.
func (p *Protector) Issue(w http.ResponseWriter, r *http.Request) (string, error) {
	secret := ""
	if c, err := r.Cookie(p.CookieName); err == nil && c.Value != "" {
		secret = c.Value
	} else {
		secret, err = cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return "", err
		}
		http.SetCookie(w, &http.Cookie{
			Name:     p.CookieName,
			Value:    secret,
			Path:     "/",
			HttpOnly: true,
			Secure:   p.Secure,
			SameSite: http.SameSiteStrictMode,
		})
	}

	salt, err := cryptox.GenerateToken(8)
	if err != nil {
		return "", err
	}
	return salt + "." + cryptox.Sign(p.key, salt, secret), nil
}

// Verify checks the token header against the secret cookie.
func (p *Protector) Verify(r *http.Request) error {
	c, err := r.Cookie(p.CookieName)
	if err != nil || c.Value == "" {
		return ErrMissingSecret
	}

	token := strings.TrimSpace(r.Header.Get(p.HeaderName))
	if token == "" {
		return ErrMissingToken
	}

	salt, mac, ok := strings.Cut(token, ".")
	if !ok || salt == "" || mac == "" {
		return ErrBadToken
	}
	if !cryptox.Equal(mac, cryptox.Sign(p.key, salt, c.Value)) {
		return ErrBadToken
	}
	return nil
}
