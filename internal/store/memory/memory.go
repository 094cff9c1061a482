package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	"github.com/hamed0406/uptimemonitor/internal/store"
)

// Store keeps probe rows in memory. Used by tests and ephemeral runs.
type Store struct {
	mu      sync.RWMutex
	results []domain.ProbeResult
}

func New() *Store {
	return &Store{results: make([]domain.ProbeResult, 0, 128)}
}

func (m *Store) Append(ctx context.Context, r *domain.ProbeResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, *r)
	return nil
}

func (m *Store) ByDate(ctx context.Context, url string, day time.Time) ([]domain.ProbeResult, error) {
	start, end := store.DayRange(day)

	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ProbeResult
	for _, r := range m.results {
		if r.URL != url {
			continue
		}
		if r.Timestamp.Before(start) || !r.Timestamp.Before(end) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (m *Store) Recent(ctx context.Context, url string, limit int) ([]domain.ProbeResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.ProbeResult
	for i := len(m.results) - 1; i >= 0 && len(out) < limit; i-- {
		if m.results[i].URL == url {
			out = append(out, m.results[i])
		}
	}
	return out, nil
}

func (m *Store) Prune(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.results[:0]
	var deleted int64
	for _, r := range m.results {
		if r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.results = kept
	return deleted, nil
}

func (m *Store) Close() error { return nil }

var _ store.ResultStore = (*Store)(nil)
