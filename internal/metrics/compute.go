package metrics

import "congress-trade-lab/internal/domain"

// Totals are the headline counts of a run.
type Totals struct {
	Trades    int
	Buys      int
	Sells     int
	Conflicts int
}

func (t *Totals) add(tr domain.Trade) {
	t.Trades++
	if tr.IsBuy() {
		t.Buys++
	} else {
		t.Sells++
	}
	if tr.Conflict {
		t.Conflicts++
	}
}

// Compute aggregates trades in one traversal.
func Compute(trades []domain.Trade) (domain.Stats, Totals) {
	a := NewAggregator()
	for _, t := range trades {
		a.Add(t)
	}
	return a.Stats(), a.Totals()
}
