package guard

import (
	"context"
	"time"

	"github.com/chhayaprint/billing-api/internal/models"
)

// AttemptStore is the keyed store behind the guard. The in-memory
// implementation below suits a single instance; a durable implementation
// (internal/repositories.AttemptStore) shares lockout state across
// instances and survives restarts.
type AttemptStore interface {
	// Get returns the record for an IP, or models.ErrNotFound.
	Get(ctx context.Context, ip string) (*models.AttemptRecord, error)
	// Put inserts or replaces the record for its IP.
	Put(ctx context.Context, record *models.AttemptRecord) error
	// Delete removes the record for an IP. Missing records are not an error.
	Delete(ctx context.Context, ip string) error
	// DeleteIdleBefore removes non-permanent records whose last attempt is
	// older than the cutoff, returning the number removed.
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error)
}
