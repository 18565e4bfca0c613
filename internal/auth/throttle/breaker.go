package throttle

import (
	"context"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// BreakerLimiter prefers a shared primary limiter and falls back to a local
// one while the primary is failing. Attempts counted by the fallback are not
// visible to other replicas, so limits are per replica during an outage.
type BreakerLimiter struct {
	primary  Limiter
	fallback Limiter
	cb       *gobreaker.CircuitBreaker
	logger   *slog.Logger

	// fallbackLog caps the fallback warning to one per interval; during an
	// outage every request takes the fallback.
	fallbackLog *rate.Sometimes
}

// NewBreakerLimiter trips after three consecutive primary failures and probes
// the primary again after 30 seconds.
func NewBreakerLimiter(name string, primary, fallback Limiter, logger *slog.Logger) *BreakerLimiter {
	b := &BreakerLimiter{
		primary:     primary,
		fallback:    fallback,
		logger:      logger,
		fallbackLog: &rate.Sometimes{Interval: 10 * time.Second},
	}
	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("throttle backend breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return b
}

func (b *BreakerLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.primary.Allow(ctx, key)
	})
	if err == nil {
		return res.(Decision), nil
	}

	b.fallbackLog.Do(func() {
		b.logger.Warn("throttle primary unavailable, counting locally",
			"breaker", b.cb.Name(),
			"state", b.cb.State().String(),
			"error", err,
		)
	})
	return b.fallback.Allow(ctx, key)
}

// State exposes the breaker state for readiness reporting.
func (b *BreakerLimiter) State() gobreaker.State {
	return b.cb.State()
}

// Sweep forwards to the fallback when it keeps local state.
func (b *BreakerLimiter) Sweep(now time.Time) int {
	if s, ok := b.fallback.(Sweeper); ok {
		return s.Sweep(now)
	}
	return 0
}

var (
	_ Limiter = (*BreakerLimiter)(nil)
	_ Sweeper = (*BreakerLimiter)(nil)
)
