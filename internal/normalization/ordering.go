package normalization

import (
	"sort"

	"congress-trade-lab/internal/domain"
)

// SortTradesByDateDesc orders trades by transaction date, newest first.
// The sort is stable: trades with equal dates keep their input order,
// and blank dates sink to the end.
func SortTradesByDateDesc(trades []domain.Trade) {
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].TransactionDate > trades[j].TransactionDate
	})
}

// FilterWindow returns the trades whose transaction date is within the window
// starting at cutoff, preserving order.
func FilterWindow(trades []domain.Trade, cutoff string) []domain.Trade {
	out := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if InWindow(t.TransactionDate, cutoff) {
			out = append(out, t)
		}
	}
	return out
}
