package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/chhayaprint/billing-api/internal/database"
	"github.com/chhayaprint/billing-api/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptStore is a Postgres-backed guard.AttemptStore. Unlike the
// in-memory store, lockout state survives restarts and is shared when the
// API runs behind more than one instance (GUARD_STORE=postgres).
type AttemptStore struct {
	pool *pgxpool.Pool
}

// NewAttemptStore creates a new AttemptStore over the shared pool.
func NewAttemptStore(db *database.DB) *AttemptStore {
	return &AttemptStore{pool: db.Pool}
}

func (s *AttemptStore) Get(ctx context.Context, ip string) (*models.AttemptRecord, error) {
	query := `
		SELECT ip_address, failed_attempts, is_permanent, blocked_until, last_attempt_at
		FROM login_attempts WHERE ip_address = $1
	`

	var record models.AttemptRecord
	err := s.pool.QueryRow(ctx, query, ip).Scan(
		&record.IP, &record.FailedAttempts, &record.Permanent,
		&record.BlockedUntil, &record.LastAttemptTime,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &record, nil
}

func (s *AttemptStore) Put(ctx context.Context, record *models.AttemptRecord) error {
	query := `
		INSERT INTO login_attempts (ip_address, failed_attempts, is_permanent, blocked_until, last_attempt_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (ip_address) DO UPDATE
		SET failed_attempts = EXCLUDED.failed_attempts,
			is_permanent = EXCLUDED.is_permanent,
			blocked_until = EXCLUDED.blocked_until,
			last_attempt_at = EXCLUDED.last_attempt_at
	`

	_, err := s.pool.Exec(ctx, query,
		record.IP, record.FailedAttempts, record.Permanent,
		record.BlockedUntil, record.LastAttemptTime,
	)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (s *AttemptStore) Delete(ctx context.Context, ip string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM login_attempts WHERE ip_address = $1`, ip)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

func (s *AttemptStore) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM login_attempts WHERE is_permanent = false AND last_attempt_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete idle attempt records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
