package store

import (
	"context"
	"slices"
	"sync"

	"bizverify/internal/runs/models"
)

// InMemoryStore keeps run history for the life of the process.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs []models.RunSummary
	keep int
}

// NewInMemoryStore retains at most keep runs; keep <= 0 retains everything.
func NewInMemoryStore(keep int) *InMemoryStore {
	return &InMemoryStore{keep: keep}
}

func (s *InMemoryStore) Save(_ context.Context, run models.RunSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, run)
	if s.keep > 0 && len(s.runs) > s.keep {
		s.runs = slices.Delete(s.runs, 0, len(s.runs)-s.keep)
	}
	return nil
}

// ListRecent returns up to limit runs, most recent first.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]models.RunSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := min(limit, len(s.runs))
	out := make([]models.RunSummary, 0, max(n, 0))
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[i])
	}
	return out, nil
}
