package guard

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/marketauth/internal/auth/domain"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/jwtx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// Credential requires a valid access token, read from the access cookie or,
// for non-browser clients, an Authorization bearer header.
func Credential(codec *jwtx.Codec, cookieName string) Guard {
	return Func(func(rc *RequestContext) error {
		token := AccessToken(rc.Request, cookieName)
		if token == "" {
			return authsdk.ErrAccessTokenRequired
		}

		claims, err := codec.Verify(token, jwtx.TypeAccess)
		if err != nil {
			if errors.Is(err, jwtx.ErrExpired) {
				return authsdk.ErrAccessTokenExpired
			}
			return authsdk.ErrAccessTokenInvalid
		}

		rc.Principal = &domain.Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
			Role:   claims.Role,
		}
		rc.Request = rc.Request.WithContext(slogx.WithPrincipal(rc.Request.Context(), claims.UserID, claims.Role))
		return nil
	})
}

// AccessToken extracts the access token from the request.
func AccessToken(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}
