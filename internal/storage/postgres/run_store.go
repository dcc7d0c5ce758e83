package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, started_at, finished_at, status, tier, cutoff,
	total_trades, total_buy, total_sell, total_conflicts, duplicates, windowed_out,
	artifact, error
`

// Insert adds a new run. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.Run) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO pipeline_runs (` + runColumns + `) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14
		)
	`

	// An empty artifact is not valid JSON; store NULL instead.
	var artifact []byte
	if len(r.Artifact) > 0 {
		artifact = r.Artifact
	}

	_, err := s.pool.Exec(ctx, query,
		r.RunID, r.StartedAt, r.FinishedAt, string(r.Status), r.Tier, r.Cutoff,
		r.TotalTrades, r.TotalBuy, r.TotalSell, r.TotalConflicts, r.Duplicates, r.WindowedOut,
		artifact, r.Error,
	)
	if err != nil {
		return mapWriteError(err, "insert pipeline run")
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM pipeline_runs WHERE run_id = $1`
	return s.queryOne(ctx, query, runID)
}

// Latest retrieves the most recently finished successful run.
func (s *RunStore) Latest(ctx context.Context) (*domain.Run, error) {
	query := `
		SELECT ` + runColumns + ` FROM pipeline_runs
		WHERE status = $1
		ORDER BY finished_at DESC, run_id DESC
		LIMIT 1
	`
	return s.queryOne(ctx, query, string(domain.RunStatusSucceeded))
}

func (s *RunStore) queryOne(ctx context.Context, query string, args ...any) (*domain.Run, error) {
	row := s.pool.QueryRow(ctx, query, args...)
	r, err := scanRun(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pipeline run: %w", err)
	}
	return r, nil
}

func scanRun(row pgx.Row) (*domain.Run, error) {
	var (
		r      domain.Run
		status string
	)
	err := row.Scan(
		&r.RunID, &r.StartedAt, &r.FinishedAt, &status, &r.Tier, &r.Cutoff,
		&r.TotalTrades, &r.TotalBuy, &r.TotalSell, &r.TotalConflicts, &r.Duplicates, &r.WindowedOut,
		&r.Artifact, &r.Error,
	)
	if err != nil {
		return nil, err
	}
	r.Status = domain.RunStatus(status)
	return &r, nil
}
