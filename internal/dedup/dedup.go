// Package dedup removes repeated disclosures reported by overlapping sources.
package dedup

import "congress-trade-lab/internal/domain"

// Key identifies a disclosure. Values are compared as given by the source,
// so formatting differences between sources produce distinct keys.
type Key struct {
	Legislator string
	Ticker     string
	Date       string
	TypeText   string
}

// KeyOf returns the dedup key of a trade.
func KeyOf(t domain.Trade) Key {
	return Key{
		Legislator: t.Legislator,
		Ticker:     t.Ticker,
		Date:       t.TransactionDate,
		TypeText:   t.TypeText,
	}
}

// Result is the output of Deduplicate.
type Result struct {
	Trades  []domain.Trade
	Dropped int
}

// Deduplicate keeps the first occurrence of each key, preserving input order.
// Callers control precedence by concatenating sources in priority order.
func Deduplicate(trades []domain.Trade) Result {
	seen := make(map[Key]struct{}, len(trades))
	out := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		k := KeyOf(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return Result{Trades: out, Dropped: len(trades) - len(out)}
}
