package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/pipeline"
)

// Artifact layout constants.
const (
	DefaultTradeLimit = 500
	UpdatedAtLayout   = "2006-01-02 15:04:05 MST"
)

// Artifact is the published JSON document.
type Artifact struct {
	UpdatedAt          string                              `json:"updated_at"`
	TotalTrades        int                                 `json:"total_trades"`
	TotalBuy           int                                 `json:"total_buy"`
	TotalSell          int                                 `json:"total_sell"`
	TotalConflicts     int                                 `json:"total_conflicts"`
	Trades             []domain.Trade                      `json:"trades"`
	Stats              domain.Stats                        `json:"stats"`
	PoliticianInfo     map[string]domain.LegislatorProfile `json:"politician_info"`
	SectorJurisdiction map[string]string                   `json:"sector_jurisdiction"`
}

// BuildArtifact assembles the artifact from a run result.
// Totals cover every windowed trade; the trade list keeps the newest tradeLimit.
func BuildArtifact(res *pipeline.Result, tradeLimit int) *Artifact {
	if tradeLimit <= 0 {
		tradeLimit = DefaultTradeLimit
	}
	trades := res.Trades
	if len(trades) > tradeLimit {
		trades = trades[:tradeLimit]
	}
	if trades == nil {
		trades = []domain.Trade{}
	}

	info := res.PoliticianInfo
	if info == nil {
		info = map[string]domain.LegislatorProfile{}
	}
	juris := res.SectorJurisdiction
	if juris == nil {
		juris = map[string]string{}
	}

	stats := res.Stats
	if stats.PopularStocks == nil {
		stats.PopularStocks = []domain.StockAggregate{}
	}
	if stats.Sectors == nil {
		stats.Sectors = []domain.SectorAggregate{}
	}
	if stats.PartyStats == nil {
		stats.PartyStats = domain.NewPartyStats()
	}
	if stats.TopTraders == nil {
		stats.TopTraders = []domain.TraderAggregate{}
	}

	return &Artifact{
		UpdatedAt:          res.RunDate.Format(UpdatedAtLayout),
		TotalTrades:        res.Totals.Trades,
		TotalBuy:           res.Totals.Buys,
		TotalSell:          res.Totals.Sells,
		TotalConflicts:     res.Totals.Conflicts,
		Trades:             trades,
		Stats:              stats,
		PoliticianInfo:     info,
		SectorJurisdiction: juris,
	}
}

// MarshalArtifact encodes the artifact as indented JSON without HTML escaping.
func MarshalArtifact(a *Artifact) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(a); err != nil {
		return nil, fmt.Errorf("encode artifact: %w", err)
	}
	return buf.Bytes(), nil
}
