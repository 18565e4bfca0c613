// Package throttle counts attempts per client key within a window and
// decides whether the next attempt may proceed.
package throttle

import (
	"context"
	"time"
)

// Limit is an attempt ceiling per window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// Default tiers. Strict guards credential and privilege mutations, lenient
// covers everything else.
var (
	DefaultStrict  = Limit{Requests: 5, Window: time.Minute}
	DefaultLenient = Limit{Requests: 100, Window: time.Minute}
)

// Decision is the outcome of one attempt.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // zero when allowed
}

// Limiter records an attempt for key and reports whether it is within the
// limit. Implementations must be safe for concurrent use; increments for the
// same key are atomic.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// Sweeper is implemented by limiters that keep per-key state in process.
type Sweeper interface {
	// Sweep drops state for keys whose window closed at or before now,
	// returning how many were dropped.
	Sweep(now time.Time) int
}
