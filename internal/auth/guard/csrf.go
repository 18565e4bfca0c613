package guard

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/marketauth/internal/auth/csrf"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// CSRF requires a valid CSRF token on state-changing methods.
func CSRF(p *csrf.Protector) Guard {
	return Func(func(rc *RequestContext) error {
		switch rc.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return nil
		}

		if err := p.Verify(rc.Request); err != nil {
			slogx.FromContext(rc.Request.Context()).Warn("csrf check failed",
				slog.String("reason", err.Error()),
				slog.String("path", rc.Request.URL.Path),
			)
			return authsdk.ErrCsrfTokenNotFound
		}
		return nil
	})
}
