package records

import (
	"context"
	"sync"
	"time"

	"github.com/kioku-labs/kioku/internal/models"
)

// MemoryRetriever is an in-memory Retriever for tests.
type MemoryRetriever struct {
	mu      sync.RWMutex
	records map[string][]*models.Record // domain -> records
}

// NewMemoryRetriever creates an empty in-memory retriever.
func NewMemoryRetriever() *MemoryRetriever {
	return &MemoryRetriever{records: make(map[string][]*models.Record)}
}

// Add stores a record under its object type.
func (m *MemoryRetriever) Add(rec *models.Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.records[rec.ObjectType] = append(m.records[rec.ObjectType], rec)
}

// GetRecords returns records for one domain within the optional bounds.
func (m *MemoryRetriever) GetRecords(ctx context.Context, domain string, start, end *time.Time) ([]*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Record
	for _, rec := range m.records[domain] {
		if start != nil && rec.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && rec.CreatedAt.After(*end) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// CountByDomain returns record counts per domain.
func (m *MemoryRetriever) CountByDomain(ctx context.Context) (map[string]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[string]int)
	for domain, recs := range m.records {
		if len(recs) > 0 {
			counts[domain] = len(recs)
		}
	}
	return counts, nil
}

// Close is a no-op for MemoryRetriever.
func (m *MemoryRetriever) Close() error {
	return nil
}
