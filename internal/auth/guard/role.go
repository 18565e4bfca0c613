package guard

import (
	"slices"

	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
)

// RequireRole passes when the principal holds one of roles.
func RequireRole(roles ...string) Guard {
	return Func(func(rc *RequestContext) error {
		if rc.Principal == nil {
			return authsdk.ErrAccessTokenRequired
		}
		if !slices.Contains(roles, rc.Principal.Role) {
			return authsdk.ErrAccessDenied
		}
		return nil
	})
}
