package reporting

import (
	"time"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/pipeline"
)

var partyOrder = []domain.Party{domain.PartyDemocrat, domain.PartyRepublican}

// Summary is the human-facing digest of a run, rendered by RenderMarkdown.
type Summary struct {
	RunID       string
	GeneratedAt time.Time
	Tier        string
	Cutoff      string

	TotalTrades    int
	TotalBuy       int
	TotalSell      int
	TotalConflicts int
	Duplicates     int
	WindowedOut    int

	Sources []SourceRow
	Stocks  []StockRow
	Sectors []SectorRow
	Parties []PartyRow
	Traders []TraderRow
}

// SourceRow is one source outcome within the run.
type SourceRow struct {
	Tier     string
	Source   string
	Fetched  int
	Accepted int
	Rejected int
	Error    string
}

// StockRow is one popular-stock line.
type StockRow struct {
	Ticker    string
	Sector    string
	Count     int
	Volume    int64
	Traders   int
	Conflicts int
}

// SectorRow is one sector-exposure line.
type SectorRow struct {
	Name      string
	Value     int64
	Count     int
	Conflicts int
}

// PartyRow is one party line.
type PartyRow struct {
	Party     string
	Buy       int
	Sell      int
	BuyVol    int64
	SellVol   int64
	Conflicts int
}

// TraderRow is one top-trader line.
type TraderRow struct {
	Name      string
	Party     string
	Buys      int
	Sells     int
	Volume    int64
	Tickers   int
	Conflicts int
}

// NewSummary builds a summary from a run result.
func NewSummary(runID string, res *pipeline.Result) *Summary {
	s := &Summary{
		RunID:          runID,
		GeneratedAt:    res.RunDate,
		Tier:           res.Tier,
		Cutoff:         res.Cutoff,
		TotalTrades:    res.Totals.Trades,
		TotalBuy:       res.Totals.Buys,
		TotalSell:      res.Totals.Sells,
		TotalConflicts: res.Totals.Conflicts,
		Duplicates:     res.Duplicates,
		WindowedOut:    res.WindowedOut,
	}

	for _, r := range res.Sources {
		row := SourceRow{
			Tier:     r.Tier,
			Source:   r.Source,
			Fetched:  r.Fetched,
			Accepted: r.Accepted,
			Rejected: r.Rejected,
		}
		if r.Err != nil {
			row.Error = r.Err.Error()
		}
		s.Sources = append(s.Sources, row)
	}

	for _, a := range res.Stats.PopularStocks {
		s.Stocks = append(s.Stocks, StockRow{
			Ticker:    a.Ticker,
			Sector:    deref(a.Sector),
			Count:     a.Count,
			Volume:    a.Volume,
			Traders:   a.Traders,
			Conflicts: a.Conflicts,
		})
	}
	for _, a := range res.Stats.Sectors {
		s.Sectors = append(s.Sectors, SectorRow(a))
	}
	for _, p := range partyOrder {
		agg, ok := res.Stats.PartyStats[p]
		if !ok || agg == nil {
			continue
		}
		s.Parties = append(s.Parties, PartyRow{
			Party:     string(p),
			Buy:       agg.Buy,
			Sell:      agg.Sell,
			BuyVol:    agg.BuyVol,
			SellVol:   agg.SellVol,
			Conflicts: agg.Conflicts,
		})
	}
	for _, a := range res.Stats.TopTraders {
		s.Traders = append(s.Traders, TraderRow{
			Name:      a.Name,
			Party:     deref(a.Party),
			Buys:      a.Buys,
			Sells:     a.Sells,
			Volume:    a.Volume,
			Tickers:   a.Tickers,
			Conflicts: a.Conflicts,
		})
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
