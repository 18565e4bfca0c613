package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
)

// CookieConfig describes the session cookies. Both are http-only; Secure is
// set in production.
type CookieConfig struct {
	AccessName    string
	RefreshName   string
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration

	// RefreshPath scopes the refresh cookie to the endpoints that read it.
	RefreshPath string

	Secure bool
}

func (c CookieConfig) setSession(w http.ResponseWriter, pair *domain.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.AccessName,
		Value:    pair.AccessToken,
		Path:     "/",
		MaxAge:   int(c.AccessMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     c.RefreshName,
		Value:    pair.RefreshToken,
		Path:     c.RefreshPath,
		MaxAge:   int(c.RefreshMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteStrictMode,
	})
}

func (c CookieConfig) clearSession(w http.ResponseWriter) {
	for _, ck := range []struct{ name, path string }{
		{c.AccessName, "/"},
		{c.RefreshName, c.RefreshPath},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     ck.name,
			Value:    "",
			Path:     ck.path,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   c.Secure,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

func (c CookieConfig) refreshToken(r *http.Request) string {
	if ck, err := r.Cookie(c.RefreshName); err == nil {
		return ck.Value
	}
	return ""
}
