package memory

import (
	"context"
	"sync"

	"github.com/omar-chaar/m3u-health-check/internal/domain"
	"github.com/omar-chaar/m3u-health-check/internal/repo"
)

var _ repo.RunStore = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	nextID int64
	runs   []domain.RunRecord
}

func New() *Store {
	return &Store{nextID: 1, runs: make([]domain.RunRecord, 0, 16)}
}

func (m *Store) SaveRun(ctx context.Context, rec *domain.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = m.nextID
	m.nextID++
	m.runs = append(m.runs, *rec)
	return nil
}

// ListRuns returns the most recent runs first.
func (m *Store) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := len(m.runs)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]domain.RunRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.runs[i])
	}
	return out, nil
}

func (m *Store) LastRun(ctx context.Context) (*domain.RunRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.runs) == 0 {
		return nil, nil
	}
	rec := m.runs[len(m.runs)-1]
	return &rec, nil
}
