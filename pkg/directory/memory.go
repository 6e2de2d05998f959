package directory

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation for tests and local
// development. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]UserRecord
	closed  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]UserRecord),
	}
}

// ListByRole returns all records with the given role, oldest first.
func (m *MemoryStore) ListByRole(ctx context.Context, role string) ([]UserRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := []UserRecord{}
	for _, rec := range m.records {
		if rec.Role == role {
			records = append(records, rec)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].InstalledAt.Before(records[j].InstalledAt)
	})

	return records, nil
}

// Delete removes the records with the given IDs.
func (m *MemoryStore) Delete(ctx context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for _, id := range ids {
		if _, ok := m.records[id]; ok {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// Upsert inserts or replaces a record.
func (m *MemoryStore) Upsert(ctx context.Context, rec UserRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.ID] = rec
	return nil
}

// Count returns the total number of records.
func (m *MemoryStore) Count(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.records)), nil
}

// Ping always succeeds for the in-memory backend.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close marks the store closed.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	return nil
}
