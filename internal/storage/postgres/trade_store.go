package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

var runTradeColumns = []string{
	"run_id", "trade_id", "position", "legislator", "party", "ticker", "asset_description",
	"direction", "amount_range", "amount_estimate", "transaction_date", "disclosure_date",
	"sector", "conflict", "chamber", "owner", "source", "type_text",
}

// InsertBulk adds the trades of a run atomically using COPY.
// Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.RunTrade) error {
	if len(trades) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(trades))
	for _, t := range trades {
		if t == nil || t.RunID == "" || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		tr := t.Trade
		rows = append(rows, []any{
			t.RunID, t.TradeID, t.Position, tr.Legislator, string(tr.Party), tr.Ticker, tr.AssetDescription,
			string(tr.Direction), tr.AmountRange, tr.AmountEstimate, tr.TransactionDate, tr.DisclosureDate,
			tr.Sector, tr.Conflict, string(tr.Chamber), tr.Owner, tr.Source, tr.TypeText,
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.CopyFrom(ctx, pgx.Identifier{"run_trades"}, runTradeColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return mapWriteError(err, "copy run trades")
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetByRunID retrieves all trades of a run, ordered by position ASC.
func (s *TradeStore) GetByRunID(ctx context.Context, runID string) ([]*domain.RunTrade, error) {
	query := `
		SELECT run_id, trade_id, position, legislator, party, ticker, asset_description,
			direction, amount_range, amount_estimate, transaction_date, disclosure_date,
			sector, conflict, chamber, owner, source, type_text
		FROM run_trades
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query run trades: %w", err)
	}
	defer rows.Close()

	var result []*domain.RunTrade
	for rows.Next() {
		var (
			t                         domain.RunTrade
			party, direction, chamber string
		)
		err := rows.Scan(
			&t.RunID, &t.TradeID, &t.Position, &t.Trade.Legislator, &party, &t.Trade.Ticker, &t.Trade.AssetDescription,
			&direction, &t.Trade.AmountRange, &t.Trade.AmountEstimate, &t.Trade.TransactionDate, &t.Trade.DisclosureDate,
			&t.Trade.Sector, &t.Trade.Conflict, &chamber, &t.Trade.Owner, &t.Trade.Source, &t.Trade.TypeText,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run trade: %w", err)
		}
		t.Trade.Party = domain.Party(party)
		t.Trade.Direction = domain.Direction(direction)
		t.Trade.Chamber = domain.Chamber(chamber)
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
