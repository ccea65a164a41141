package ledger

import (
	"context"
	"sync"
)

// MemoryLedger is an in-process Ledger for tests and --dry-run, where
// dedup should hold within the run but not persist past it.
type MemoryLedger struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]Record)}
}

func (m *MemoryLedger) Seen(_ context.Context, fingerprint string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.records[fingerprint]
	return ok, nil
}

func (m *MemoryLedger) MarkProcessed(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[rec.Fingerprint]; ok {
		return nil
	}
	m.records[rec.Fingerprint] = rec
	return nil
}

func (m *MemoryLedger) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := Stats{Total: int64(len(m.records))}
	for _, rec := range m.records {
		if stats.Oldest.IsZero() || rec.ProcessedAt.Before(stats.Oldest) {
			stats.Oldest = rec.ProcessedAt
		}
		if rec.ProcessedAt.After(stats.Newest) {
			stats.Newest = rec.ProcessedAt
		}
	}
	return stats, nil
}

func (m *MemoryLedger) Clear(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.records))
	m.records = make(map[string]Record)
	return n, nil
}

func (m *MemoryLedger) Close() error { return nil }
