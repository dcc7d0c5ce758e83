package memory

import (
	"context"
	"sync"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Run // keyed by run_id
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.Run),
	}
}

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.Run) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[r.RunID] = cloneRun(r)
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[runID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return cloneRun(r), nil
}

// Latest retrieves the most recently finished successful run.
// Ties on finished_at resolve to the greater run_id.
func (s *RunStore) Latest(_ context.Context) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Run
	for _, r := range s.data {
		if r.Status != domain.RunStatusSucceeded {
			continue
		}
		if latest == nil ||
			r.FinishedAt.After(latest.FinishedAt) ||
			(r.FinishedAt.Equal(latest.FinishedAt) && r.RunID > latest.RunID) {
			latest = r
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	return cloneRun(latest), nil
}

func cloneRun(r *domain.Run) *domain.Run {
	c := *r
	if r.Artifact != nil {
		c.Artifact = append([]byte(nil), r.Artifact...)
	}
	return &c
}

var _ storage.RunStore = (*RunStore)(nil)
