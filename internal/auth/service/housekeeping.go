package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/marketauth/internal/auth/store"
	"github.com/aussiebroadwan/marketauth/internal/auth/throttle"
)

// HousekeepingService periodically clears expired refresh tokens and drops
// closed in-process rate limit windows.
type HousekeepingService struct {
	Store    store.Store
	Sweepers []throttle.Sweeper
	Logger   *slog.Logger
	Interval time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 10 minutes.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration, sweepers ...throttle.Sweeper) *HousekeepingService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	return &HousekeepingService{
		Store:    store,
		Sweepers: sweepers,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one pass. Each step is independent; a failure in one does not
// stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := s.Now()

	cleared, err := s.Store.Users().ClearExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to clear expired refresh tokens", "error", err)
	}

	swept := 0
	for _, sw := range s.Sweepers {
		swept += sw.Sweep(now)
	}

	s.Logger.Debug("housekeeping cleanup completed",
		"refresh_tokens_cleared", cleared,
		"limiter_keys_swept", swept,
	)
}
