package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/chhayaprint/billing-api/internal/guard"
)

// Sweeper periodically drops idle login-attempt records so IPs that
// never hit the lockout threshold do not accumulate forever.
// Permanently blocked records are kept.
type Sweeper struct {
	guard    *guard.Guard
	logger   *slog.Logger
	interval time.Duration
	stopCh   chan struct{}
}

// NewSweeper creates a new attempt-record sweeper
func NewSweeper(g *guard.Guard, logger *slog.Logger, interval time.Duration) *Sweeper {
	return &Sweeper{
		guard:    g,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep task
func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.stopCh:
			s.logger.Info("attempt sweeper stopped")
			return
		case <-ctx.Done():
			s.logger.Info("attempt sweeper context cancelled")
			return
		}
	}
}

func (s *Sweeper) runSweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	removed, err := s.guard.Sweep(sweepCtx)
	if err != nil {
		s.logger.Error("failed to sweep login attempts", slog.Any("error", err))
		return
	}

	if removed > 0 {
		s.logger.Info("swept idle login attempts", slog.Int("removed", removed))
	}
}

// Stop signals the sweeper to stop
func (s *Sweeper) Stop() {
	close(s.stopCh)
}
