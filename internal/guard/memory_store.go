package guard

import (
	"context"
	"sync"
	"time"

	"github.com/chhayaprint/billing-api/internal/models"
)

// MemoryStore is a process-local AttemptStore. The map is mutex-guarded
// since the HTTP server handles requests concurrently. State is not shared
// across instances; use the Postgres-backed store for multi-instance
// deployments.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]models.AttemptRecord
}

// NewMemoryStore creates an empty in-memory attempt store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]models.AttemptRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, ip string) (*models.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[ip]
	if !ok {
		return nil, models.ErrNotFound
	}
	// Return a copy so callers cannot mutate shared state.
	return &record, nil
}

func (s *MemoryStore) Put(ctx context.Context, record *models.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.IP] = *record
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, ip)
	return nil
}

func (s *MemoryStore) DeleteIdleBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for ip, record := range s.records {
		if !record.Permanent && record.LastAttemptTime.Before(cutoff) {
			delete(s.records, ip)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of tracked records. Used by tests and the sweeper log.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.records)
}
