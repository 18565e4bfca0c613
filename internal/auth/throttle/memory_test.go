package throttle_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/throttle"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	lim := throttle.NewMemoryLimiter(throttle.Limit{Requests: 1, Window: time.Minute}, clk.Now)
	ctx := context.Background()

	d, _ := lim.Allow(ctx, "a")
	require.True(t, d.Allowed)
	d, _ = lim.Allow(ctx, "a")
	require.False(t, d.Allowed)

	d, _ = lim.Allow(ctx, "b")
	require.True(t, d.Allowed)
}

func TestMemoryLimiter_ConcurrentAttemptsAreCountedOnce(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	lim := throttle.NewMemoryLimiter(throttle.Limit{Requests: 10, Window: time.Hour}, clk.Now)
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d, _ := lim.Allow(ctx, "same-client"); d.Allowed {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 10, allowed.Load())
}

func TestMemoryLimiter_Sweep(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	lim := throttle.NewMemoryLimiter(throttle.Limit{Requests: 2, Window: time.Minute}, clk.Now)
	ctx := context.Background()

	_, _ = lim.Allow(ctx, "idle")
	_, _ = lim.Allow(ctx, "busy")
	_, _ = lim.Allow(ctx, "busy")
	_, _ = lim.Allow(ctx, "busy")

	require.Equal(t, 0, lim.Sweep(clk.Now()), "every window is still open")

	clk.Advance(30 * time.Second)
	_, _ = lim.Allow(ctx, "late")

	// idle and busy close at exactly one minute; late is still open
	clk.Advance(30 * time.Second)
	require.Equal(t, 2, lim.Sweep(clk.Now()))

	d, err := lim.Allow(ctx, "late")
	require.NoError(t, err)
	require.True(t, d.Allowed)
	require.Equal(t, 0, d.Remaining, "late keeps its count across the sweep")
}

func TestMemoryLimiter_SweepDuringAttemptsKeepsCount(t *testing.T) {
	t.Parallel()
	clk := newFakeClock()
	lim := throttle.NewMemoryLimiter(throttle.Limit{Requests: 10, Window: time.Minute}, clk.Now)
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if d, _ := lim.Allow(ctx, "same-client"); d.Allowed {
				allowed.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			lim.Sweep(clk.Now())
		}()
	}
	wg.Wait()

	require.EqualValues(t, 10, allowed.Load())
}
