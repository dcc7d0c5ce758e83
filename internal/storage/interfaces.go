package storage

import (
	"context"

	"congress-trade-lab/internal/domain"
)

// RunStore provides access to pipeline_runs storage.
type RunStore interface {
	// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.Run) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.Run, error)

	// Latest retrieves the most recently finished successful run.
	// Returns ErrNotFound if no run succeeded yet.
	Latest(ctx context.Context) (*domain.Run, error)
}

// TradeStore provides access to run_trades storage.
type TradeStore interface {
	// InsertBulk adds the trades of one run atomically.
	// Fails entire batch on duplicate (run_id, trade_id).
	InsertBulk(ctx context.Context, trades []*domain.RunTrade) error

	// GetByRunID retrieves all trades of a run, ordered by position ASC.
	GetByRunID(ctx context.Context, runID string) ([]*domain.RunTrade, error)
}
