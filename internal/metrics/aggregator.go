package metrics

import (
	"sort"

	"congress-trade-lab/internal/domain"
)

// Rollup limits.
const (
	TopStocksLimit  = 20
	TopTradersLimit = 20
)

type stockAcc struct {
	agg     domain.StockAggregate
	traders map[string]struct{}
}

type sectorAcc struct {
	agg domain.SectorAggregate
}

type traderAcc struct {
	agg     domain.TraderAggregate
	tickers map[string]struct{}
}

// Aggregator accumulates the per-run rollups in a single pass.
// Entries are remembered in first-seen order so that ties in the final
// sorts resolve by input order.
type Aggregator struct {
	stocks     map[string]*stockAcc
	stockOrder []string

	sectors     map[string]*sectorAcc
	sectorOrder []string

	traders     map[string]*traderAcc
	traderOrder []string

	parties domain.PartyStats
	totals  Totals
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		stocks:  make(map[string]*stockAcc),
		sectors: make(map[string]*sectorAcc),
		traders: make(map[string]*traderAcc),
		parties: domain.NewPartyStats(),
	}
}

// Add folds one trade into every rollup.
func (a *Aggregator) Add(t domain.Trade) {
	a.totals.add(t)

	if t.IsBuy() {
		a.addStock(t)
		if t.HasSector() && t.Sector != domain.SectorOther {
			a.addSector(t)
		}
	}
	if ps, ok := a.parties[t.Party]; ok {
		if t.IsBuy() {
			ps.Buy++
			ps.BuyVol += t.AmountEstimate
		} else {
			ps.Sell++
			ps.SellVol += t.AmountEstimate
		}
		if t.Conflict {
			ps.Conflicts++
		}
	}
	a.addTrader(t)
}

func (a *Aggregator) addStock(t domain.Trade) {
	acc, ok := a.stocks[t.Ticker]
	if !ok {
		acc = &stockAcc{
			agg: domain.StockAggregate{
				Ticker: t.Ticker,
				Asset:  t.AssetDescription,
				Sector: optional(t.Sector),
			},
			traders: make(map[string]struct{}),
		}
		a.stocks[t.Ticker] = acc
		a.stockOrder = append(a.stockOrder, t.Ticker)
	}
	acc.agg.Count++
	acc.agg.Volume += t.AmountEstimate
	acc.traders[t.Legislator] = struct{}{}
	if t.Conflict {
		acc.agg.Conflicts++
	}
}

func (a *Aggregator) addSector(t domain.Trade) {
	acc, ok := a.sectors[t.Sector]
	if !ok {
		acc = &sectorAcc{agg: domain.SectorAggregate{Name: t.Sector}}
		a.sectors[t.Sector] = acc
		a.sectorOrder = append(a.sectorOrder, t.Sector)
	}
	acc.agg.Value += t.AmountEstimate
	acc.agg.Count++
	if t.Conflict {
		acc.agg.Conflicts++
	}
}

func (a *Aggregator) addTrader(t domain.Trade) {
	acc, ok := a.traders[t.Legislator]
	if !ok {
		var party *string
		if t.Party.IsKnown() {
			p := string(t.Party)
			party = &p
		}
		acc = &traderAcc{
			agg:     domain.TraderAggregate{Name: t.Legislator, Party: party},
			tickers: make(map[string]struct{}),
		}
		a.traders[t.Legislator] = acc
		a.traderOrder = append(a.traderOrder, t.Legislator)
	}
	if t.IsBuy() {
		acc.agg.Buys++
	} else {
		acc.agg.Sells++
	}
	acc.agg.Volume += t.AmountEstimate
	acc.tickers[t.Ticker] = struct{}{}
	if t.Conflict {
		acc.agg.Conflicts++
	}
}

// Stats materializes the rollups. The aggregator may keep accepting trades.
func (a *Aggregator) Stats() domain.Stats {
	stocks := make([]domain.StockAggregate, 0, len(a.stockOrder))
	for _, k := range a.stockOrder {
		acc := a.stocks[k]
		s := acc.agg
		s.Traders = len(acc.traders)
		stocks = append(stocks, s)
	}
	sort.SliceStable(stocks, func(i, j int) bool {
		return stocks[i].Count > stocks[j].Count
	})
	if len(stocks) > TopStocksLimit {
		stocks = stocks[:TopStocksLimit]
	}

	sectors := make([]domain.SectorAggregate, 0, len(a.sectorOrder))
	for _, k := range a.sectorOrder {
		sectors = append(sectors, a.sectors[k].agg)
	}
	sort.SliceStable(sectors, func(i, j int) bool {
		return sectors[i].Value > sectors[j].Value
	})

	traders := make([]domain.TraderAggregate, 0, len(a.traderOrder))
	for _, k := range a.traderOrder {
		acc := a.traders[k]
		tr := acc.agg
		tr.Tickers = len(acc.tickers)
		traders = append(traders, tr)
	}
	sort.SliceStable(traders, func(i, j int) bool {
		return traders[i].Volume > traders[j].Volume
	})
	if len(traders) > TopTradersLimit {
		traders = traders[:TopTradersLimit]
	}

	parties := domain.NewPartyStats()
	for p, ps := range a.parties {
		v := *ps
		parties[p] = &v
	}

	return domain.Stats{
		PopularStocks: stocks,
		Sectors:       sectors,
		PartyStats:    parties,
		TopTraders:    traders,
	}
}

// Totals returns the headline counters.
func (a *Aggregator) Totals() Totals {
	return a.totals
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
