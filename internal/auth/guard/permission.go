package guard

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/marketauth/internal/auth/service"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// RequirePermissions passes only when the principal's role grants every one
// of required.
func RequirePermissions(res Resolver, required ...string) Guard {
	return Func(func(rc *RequestContext) error {
		if rc.Principal == nil {
			return authsdk.ErrAccessTokenRequired
		}

		set, err := rc.Permissions(res)
		if err != nil {
			// A token naming a role that has since been deleted grants nothing
			if errors.Is(err, service.ErrRoleNotFound) {
				return authsdk.ErrInsufficientPermissions
			}
			return err
		}

		if missing := set.Missing(required...); len(missing) > 0 {
			slogx.FromContext(rc.Request.Context()).Info("permission denied",
				slog.String("missing", strings.Join(missing, ",")),
			)
			return authsdk.ErrInsufficientPermissions
		}
		return nil
	})
}
