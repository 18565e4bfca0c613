package guard

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/aussiebroadwan/marketauth/internal/auth/throttle"
	"github.com/aussiebroadwan/marketauth/pkg/authsdk"
	"github.com/aussiebroadwan/marketauth/pkg/httpx"
	"github.com/aussiebroadwan/marketauth/pkg/slogx"
)

// RateLimit counts the request against limiter under tier and the client key.
// Tiers with the same limiter but different names are counted separately.
func RateLimit(limiter throttle.Limiter, tier string, key httpx.KeyExtractor) Guard {
	return Func(func(rc *RequestContext) error {
		client := key(rc.Request)

		d, err := limiter.Allow(rc.Request.Context(), tier+":"+client)
		if err != nil {
			return fmt.Errorf("rate limit %s: %w", tier, err)
		}

		rc.Header.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		rc.Header.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			rc.Header.Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
			slogx.FromContext(rc.Request.Context()).Warn("rate limit exceeded",
				slog.String("tier", tier),
				slog.String("client", client),
				slog.String("path", rc.Request.URL.Path),
			)
			return authsdk.ErrTooManyAttempts
		}
		return nil
	})
}
