// Package guard enforces the login lockout policy. It tracks failed
// attempts per client IP and decides whether a new attempt may proceed.
//
// States per IP: clear (no record) → warning (n failures below the cap) →
// locked (n at the cap). Locks are either timed (auto-expiring, evaluated
// lazily on the next check) or permanent (cleared only by Unlock),
// depending on the configured policy.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/chhayaprint/billing-api/internal/models"
)

// Policy selects how a lock behaves once the failure cap is reached.
type Policy string

const (
	// PolicyTimed locks the IP for LockoutDuration; the lock expires on its
	// own the next time the record is checked.
	PolicyTimed Policy = "timed"
	// PolicyPermanent locks the IP until an explicit Unlock.
	PolicyPermanent Policy = "permanent"
)

// Messages returned to the caller for display.
const (
	MsgPermanentBlock = "Access permanently blocked. Contact developer to unlock."
)

// Config holds guard behavior settings.
type Config struct {
	Policy          Policy
	MaxAttempts     int           // failures before a lock (default 3)
	LockoutDuration time.Duration // timed-policy lock length (default 30m)
	AttemptTTL      time.Duration // idle records older than this are swept (default 1h)
}

func (c Config) withDefaults() Config {
	if c.Policy == "" {
		c.Policy = PolicyTimed
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = 30 * time.Minute
	}
	if c.AttemptTTL <= 0 {
		c.AttemptTTL = time.Hour
	}
	return c
}

// BlockStatus is the read-only answer to "may this IP attempt a login".
type BlockStatus struct {
	Blocked      bool          `json:"blocked"`
	Permanent    bool          `json:"permanent,omitempty"`
	AttemptsLeft int           `json:"attemptsLeft"`
	Message      string        `json:"message,omitempty"`
	RetryAfter   time.Duration `json:"-"`
}

// AttemptResult reports the state after recording an attempt outcome.
type AttemptResult struct {
	Blocked      bool   `json:"blocked"`
	Permanent    bool   `json:"permanent,omitempty"`
	AttemptsLeft int    `json:"attemptsLeft"`
	Message      string `json:"message,omitempty"`
}

// Guard is the login attempt guard. All methods are safe for concurrent
// use as long as the underlying store is.
type Guard struct {
	store  AttemptStore
	config Config
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Guard over the given store. Zero config fields fall back
// to the defaults (timed policy, 3 attempts, 30m lock, 1h idle TTL).
func New(store AttemptStore, config Config, logger *slog.Logger) *Guard {
	return &Guard{
		store:  store,
		config: config.withDefaults(),
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source. Tests use this to advance past a
// timed lock without sleeping.
func (g *Guard) SetClock(now func() time.Time) {
	g.now = now
}

// CheckBlock reports whether an IP is currently locked out. A timed lock
// whose deadline has passed is cleared here as a side effect, so callers
// always observe the post-expiry state.
func (g *Guard) CheckBlock(ctx context.Context, ip string) (BlockStatus, error) {
	record, err := g.store.Get(ctx, ip)
	if errors.Is(err, models.ErrNotFound) {
		return BlockStatus{AttemptsLeft: g.config.MaxAttempts}, nil
	}
	if err != nil {
		return BlockStatus{}, fmt.Errorf("failed to load attempt record: %w", err)
	}

	now := g.now()

	if record.Permanent {
		return BlockStatus{
			Blocked:   true,
			Permanent: true,
			Message:   MsgPermanentBlock,
		}, nil
	}

	if record.BlockedUntil != nil {
		if record.BlockedUntil.After(now) {
			remaining := record.BlockedUntil.Sub(now)
			return BlockStatus{
				Blocked:    true,
				Message:    retryMessage(remaining),
				RetryAfter: remaining,
			}, nil
		}

		// Lock expired: lazily reset the record to clear.
		if err := g.store.Delete(ctx, ip); err != nil {
			return BlockStatus{}, fmt.Errorf("failed to clear expired lock: %w", err)
		}
		g.logger.Info("expired lockout cleared", slog.String("ip", ip))
		return BlockStatus{AttemptsLeft: g.config.MaxAttempts}, nil
	}

	return BlockStatus{
		AttemptsLeft: g.attemptsLeft(record.FailedAttempts),
	}, nil
}

// RecordAttempt records the outcome of a verified login attempt. A success
// resets the record to clear. A failure increments the counter and locks
// the IP once the cap is reached. Attempts made while already locked are
// refused without incrementing past the cap.
func (g *Guard) RecordAttempt(ctx context.Context, ip string, success bool) (AttemptResult, error) {
	now := g.now()

	record, err := g.store.Get(ctx, ip)
	if errors.Is(err, models.ErrNotFound) {
		record = &models.AttemptRecord{IP: ip, LastAttemptTime: now}
	} else if err != nil {
		return AttemptResult{}, fmt.Errorf("failed to load attempt record: %w", err)
	}

	// Lazy expiry mirrors CheckBlock so a stale timed lock never counts.
	if record.BlockedUntil != nil && !record.BlockedUntil.After(now) {
		record.FailedAttempts = 0
		record.BlockedUntil = nil
	}

	if record.Locked(now) {
		return g.deniedResult(record, now), nil
	}

	if success {
		if err := g.store.Delete(ctx, ip); err != nil {
			return AttemptResult{}, fmt.Errorf("failed to reset attempt record: %w", err)
		}
		return AttemptResult{AttemptsLeft: g.config.MaxAttempts}, nil
	}

	record.FailedAttempts++
	record.LastAttemptTime = now

	if record.FailedAttempts >= g.config.MaxAttempts {
		switch g.config.Policy {
		case PolicyPermanent:
			record.Permanent = true
		default:
			until := now.Add(g.config.LockoutDuration)
			record.BlockedUntil = &until
		}
		g.logger.Warn("client locked out",
			slog.String("ip", ip),
			slog.Int("failed_attempts", record.FailedAttempts),
			slog.String("policy", string(g.config.Policy)))
	}

	if err := g.store.Put(ctx, record); err != nil {
		return AttemptResult{}, fmt.Errorf("failed to store attempt record: %w", err)
	}

	if record.Locked(now) {
		return g.deniedResult(record, now), nil
	}

	return AttemptResult{
		AttemptsLeft: g.attemptsLeft(record.FailedAttempts),
	}, nil
}

// Unlock force-resets an IP to the clear state regardless of policy.
// Callers gate this behind the developer unlock key.
func (g *Guard) Unlock(ctx context.Context, ip string) error {
	if err := g.store.Delete(ctx, ip); err != nil {
		return fmt.Errorf("failed to unlock %s: %w", ip, err)
	}
	g.logger.Info("client unlocked", slog.String("ip", ip))
	return nil
}

// Sweep removes non-permanent records idle longer than AttemptTTL,
// bounding memory for the in-process store and table size for the durable
// one. Returns the number of records removed.
func (g *Guard) Sweep(ctx context.Context) (int, error) {
	cutoff := g.now().Add(-g.config.AttemptTTL)
	removed, err := g.store.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to sweep attempt records: %w", err)
	}
	return removed, nil
}

func (g *Guard) attemptsLeft(failed int) int {
	left := g.config.MaxAttempts - failed
	if left < 0 {
		return 0
	}
	return left
}

func (g *Guard) deniedResult(record *models.AttemptRecord, now time.Time) AttemptResult {
	if record.Permanent {
		return AttemptResult{
			Blocked:   true,
			Permanent: true,
			Message:   MsgPermanentBlock,
		}
	}
	return AttemptResult{
		Blocked: true,
		Message: retryMessage(record.BlockedUntil.Sub(now)),
	}
}

func retryMessage(remaining time.Duration) string {
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Too many failed attempts. Please try again in %d minute(s).", minutes)
}
