package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/adwaithkm1/web-code-generator/internal/codegen/store"
)

var ErrQuotaExhausted = errors.New("quota_exhausted")

// DefaultQuotaCeiling is the per-account generation allowance within one
// reset window.
const DefaultQuotaCeiling = 50

// QuotaService enforces the per-account generation allowance. Consumption is
// a guarded decrement in the store; a background worker replenishes every
// account to the ceiling on a fixed cadence. The window is global, not
// per-account: all counters reset together, so an account's first request
// mid-window does not start a private timer.
type QuotaService struct {
	Store    store.Store
	Logger   *slog.Logger
	Ceiling  int
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewQuotaService creates a quota service. A non-positive ceiling defaults
// to DefaultQuotaCeiling, a non-positive interval to one minute.
func NewQuotaService(store store.Store, logger *slog.Logger, ceiling int, interval time.Duration) *QuotaService {
	if ceiling <= 0 {
		ceiling = DefaultQuotaCeiling
	}
	if interval <= 0 {
		interval = time.Minute
	}

	return &QuotaService{
		Store:    store,
		Logger:   logger,
		Ceiling:  ceiling,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// TryConsume spends one unit of the account's allowance and returns the
// remaining balance. Returns ErrQuotaExhausted when the allowance is spent;
// the counter itself never goes below zero however many callers race.
func (s *QuotaService) TryConsume(ctx context.Context, accountID int64) (int, error) {
	remaining, err := s.Store.Accounts().ConsumeQuota(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrQuotaExhausted) {
			return 0, ErrQuotaExhausted
		}
		return 0, err
	}
	return remaining, nil
}

// Reset replenishes a single account to the ceiling.
func (s *QuotaService) Reset(ctx context.Context, accountID int64) error {
	return s.Store.Accounts().ResetQuota(ctx, accountID, s.Ceiling)
}

// ResetAll replenishes every account to the ceiling immediately.
func (s *QuotaService) ResetAll(ctx context.Context) error {
	return s.Store.Accounts().ResetAllQuotas(ctx, s.Ceiling)
}

// Start begins the background worker that resets all quotas each interval.
// Non-blocking; call Stop to shut it down.
func (s *QuotaService) Start() {
	go s.run()
	s.Logger.Info("quota reset worker started", "interval", s.Interval, "ceiling", s.Ceiling)
}

// Stop gracefully shuts down the background worker.
func (s *QuotaService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("quota reset worker stopped")
}

func (s *QuotaService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.ResetAll(context.Background()); err != nil {
				s.Logger.Error("quota reset failed", "error", err)
			} else {
				s.Logger.Debug("quotas reset", "ceiling", s.Ceiling)
			}
		case <-s.stopCh:
			return
		}
	}
}
