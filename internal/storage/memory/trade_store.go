package memory

import (
	"context"
	"sort"
	"sync"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/storage"
)

type runTradeKey struct {
	runID   string
	tradeID string
}

// TradeStore is an in-memory implementation of storage.TradeStore.
type TradeStore struct {
	mu   sync.RWMutex
	data map[runTradeKey]*domain.RunTrade
}

// NewTradeStore creates a new in-memory trade store.
func NewTradeStore() *TradeStore {
	return &TradeStore{
		data: make(map[runTradeKey]*domain.RunTrade),
	}
}

// InsertBulk adds trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(_ context.Context, trades []*domain.RunTrade) error {
	if len(trades) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Track keys in this batch to detect intra-batch duplicates
	batchKeys := make(map[runTradeKey]struct{}, len(trades))

	// First pass: check for duplicates (existing + intra-batch)
	for _, t := range trades {
		if t == nil || t.RunID == "" || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		key := runTradeKey{runID: t.RunID, tradeID: t.TradeID}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	// Second pass: insert all
	for _, t := range trades {
		copy := *t
		s.data[runTradeKey{runID: t.RunID, tradeID: t.TradeID}] = &copy
	}

	return nil
}

// GetByRunID retrieves all trades of a run, ordered by position ASC.
func (s *TradeStore) GetByRunID(_ context.Context, runID string) ([]*domain.RunTrade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.RunTrade
	for key, t := range s.data {
		if key.runID == runID {
			copy := *t
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Position < result[j].Position
	})

	return result, nil
}

var _ storage.TradeStore = (*TradeStore)(nil)
