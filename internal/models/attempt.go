package models

import "time"

// AttemptRecord tracks failed login attempts for a single client IP.
// BlockedUntil is set under the timed lockout policy, Permanent under the
// permanent policy; the two are mutually exclusive.
type AttemptRecord struct {
	IP              string     `db:"ip_address"`
	FailedAttempts  int        `db:"failed_attempts"`
	Permanent       bool       `db:"is_permanent"`
	BlockedUntil    *time.Time `db:"blocked_until"`
	LastAttemptTime time.Time  `db:"last_attempt_at"`
}

// Locked reports whether the record is in a locked state at the given time.
func (r *AttemptRecord) Locked(now time.Time) bool {
	if r.Permanent {
		return true
	}
	return r.BlockedUntil != nil && r.BlockedUntil.After(now)
}
