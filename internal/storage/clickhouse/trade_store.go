package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using ClickHouse.
type TradeStore struct {
	conn *Conn
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(conn *Conn) *TradeStore {
	return &TradeStore{conn: conn}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

// tradeColumns lists run_trades columns in Append and Scan order.
const tradeColumns = `run_id, trade_id, position, legislator, party, ticker, asset_description,
	direction, amount_range, amount_estimate, transaction_date, disclosure_date,
	sector, conflict, chamber, owner, source, type_text`

type tradeKey struct {
	runID   string
	tradeID string
}

// InsertBulk appends trades in one batch. The table engine does not enforce
// uniqueness, so a (run_id, trade_id) already in the batch or the table
// rejects the whole batch with ErrDuplicateKey.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.RunTrade) error {
	if len(trades) == 0 {
		return nil
	}

	seen := make(map[tradeKey]struct{}, len(trades))
	var runIDs, tradeIDs []string
	for _, t := range trades {
		if t == nil || t.RunID == "" || t.TradeID == "" {
			return storage.ErrInvalidInput
		}
		k := tradeKey{t.RunID, t.TradeID}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		runIDs = append(runIDs, t.RunID)
		tradeIDs = append(tradeIDs, t.TradeID)
	}

	existing, err := s.existingKeys(ctx, runIDs, tradeIDs)
	if err != nil {
		return fmt.Errorf("check existing trades: %w", err)
	}
	for _, k := range existing {
		if _, clash := seen[k]; clash {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO run_trades ("+tradeColumns+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, t := range trades {
		tr := t.Trade
		var conflict uint8
		if tr.Conflict {
			conflict = 1
		}
		err = batch.Append(
			t.RunID, t.TradeID, uint32(t.Position), tr.Legislator, string(tr.Party), tr.Ticker, tr.AssetDescription,
			string(tr.Direction), tr.AmountRange, tr.AmountEstimate, tr.TransactionDate, tr.DisclosureDate,
			tr.Sector, conflict, string(tr.Chamber), tr.Owner, tr.Source, tr.TypeText,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByRunID retrieves all trades of a run, ordered by position ASC.
func (s *TradeStore) GetByRunID(ctx context.Context, runID string) ([]*domain.RunTrade, error) {
	query := "SELECT " + tradeColumns + " FROM run_trades FINAL WHERE run_id = ? ORDER BY position ASC"

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run id: %w", err)
	}
	defer rows.Close()

	return scanRunTrades(rows)
}

// existingKeys returns stored keys whose run and trade IDs both occur in the
// given lists. The caller intersects the result with the exact pairs.
func (s *TradeStore) existingKeys(ctx context.Context, runIDs, tradeIDs []string) ([]tradeKey, error) {
	rows, err := s.conn.Query(ctx,
		"SELECT run_id, trade_id FROM run_trades WHERE run_id IN (?) AND trade_id IN (?)",
		runIDs, tradeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []tradeKey
	for rows.Next() {
		var k tradeKey
		if err := rows.Scan(&k.runID, &k.tradeID); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func scanRunTrades(rows driver.Rows) ([]*domain.RunTrade, error) {
	var result []*domain.RunTrade
	for rows.Next() {
		var (
			t                         domain.RunTrade
			position                  uint32
			conflict                  uint8
			party, direction, chamber string
		)
		err := rows.Scan(
			&t.RunID, &t.TradeID, &position, &t.Trade.Legislator, &party, &t.Trade.Ticker, &t.Trade.AssetDescription,
			&direction, &t.Trade.AmountRange, &t.Trade.AmountEstimate, &t.Trade.TransactionDate, &t.Trade.DisclosureDate,
			&t.Trade.Sector, &conflict, &chamber, &t.Trade.Owner, &t.Trade.Source, &t.Trade.TypeText,
		)
		if err != nil {
			return nil, fmt.Errorf("scan run trade: %w", err)
		}
		t.Position = int(position)
		t.Trade.Party = domain.Party(party)
		t.Trade.Direction = domain.Direction(direction)
		t.Trade.Chamber = domain.Chamber(chamber)
		t.Trade.Conflict = conflict == 1
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}
