package throttle

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is a per-key fixed-window counter. The first attempt for a
// key opens a window of Limit.Window; attempts past Limit.Requests are
// rejected until that window closes, and the next attempt opens a new one.
// It counts the same way as RedisLimiter so the two are interchangeable.
type MemoryLimiter struct {
	limit Limit
	now   func() time.Time

	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

// NewMemoryLimiter builds a limiter for l. now may be nil for time.Now.
func NewMemoryLimiter(l Limit, now func() time.Time) *MemoryLimiter {
	if now == nil {
		now = time.Now
	}
	return &MemoryLimiter{
		limit:   l,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &window{resetAt: now.Add(m.limit.Window)}
		m.windows[key] = w
	}
	w.count++

	if w.count <= m.limit.Requests {
		return Decision{
			Allowed:   true,
			Limit:     m.limit.Requests,
			Remaining: m.limit.Requests - w.count,
		}, nil
	}

	return Decision{
		Allowed:    false,
		Limit:      m.limit.Requests,
		RetryAfter: max(w.resetAt.Sub(now), time.Second),
	}, nil
}

// Sweep removes windows that closed at or before now. A closed window
// behaves exactly like a missing one, so dropping it loses nothing.
func (m *MemoryLimiter) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for key, w := range m.windows {
		if !now.Before(w.resetAt) {
			delete(m.windows, key)
			n++
		}
	}
	return n
}

var (
	_ Limiter = (*MemoryLimiter)(nil)
	_ Sweeper = (*MemoryLimiter)(nil)
)
