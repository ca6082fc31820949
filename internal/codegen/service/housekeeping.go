package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
)

// HousekeepingService periodically removes expired shared artifacts and
// stale session revocations so neither table grows without bound. Expired
// artifacts are also evicted lazily on read; the sweep catches the ones
// nobody asks for again.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// Now is the clock; nil means time.Now. Tests override it.
	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs the sweep.
// Non-blocking; call Stop to gracefully shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker. Blocks until any
// in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes everything past its expiry. Each deletion is independent;
// a failure in one does not stop the others.
func (s *HousekeepingService) Sweep(ctx context.Context) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	if n, err := s.Store.Artifacts().DeleteExpiredArtifacts(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired artifacts", "error", err)
	} else if n > 0 {
		s.Logger.Info("expired artifacts removed", "count", n)
	}

	if n, err := s.Store.Sessions().DeleteExpiredRevocations(ctx, now); err != nil {
		s.Logger.Error("failed to delete expired session revocations", "error", err)
	} else if n > 0 {
		s.Logger.Info("expired session revocations removed", "count", n)
	}
}
