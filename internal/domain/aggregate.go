package domain

// StockAggregate is the popular-stocks rollup entry for one ticker (buys only).
type StockAggregate struct {
	Ticker    string  `json:"ticker"`
	Asset     string  `json:"asset"` // first-seen asset description
	Count     int     `json:"count"`
	Volume    int64   `json:"volume"`
	Traders   int     `json:"traders"` // distinct legislator names
	Conflicts int     `json:"conflicts"`
	Sector    *string `json:"sector"`
}

// SectorAggregate is the sector-exposure rollup entry (buys with a categorized sector).
type SectorAggregate struct {
	Name      string `json:"name"`
	Value     int64  `json:"value"`
	Count     int    `json:"count"`
	Conflicts int    `json:"conflicts"`
}

// PartyAggregate holds per-party buy/sell behavior.
type PartyAggregate struct {
	Buy       int   `json:"buy"`
	Sell      int   `json:"sell"`
	BuyVol    int64 `json:"buy_vol"`
	SellVol   int64 `json:"sell_vol"`
	Conflicts int   `json:"conflicts"`
}

// PartyStats maps D and R to their aggregates. Unknown party is never present.
type PartyStats map[Party]*PartyAggregate

// NewPartyStats returns stats with zeroed D and R entries.
func NewPartyStats() PartyStats {
	return PartyStats{
		PartyDemocrat:   &PartyAggregate{},
		PartyRepublican: &PartyAggregate{},
	}
}

// TraderAggregate is the top-traders rollup entry for one legislator name.
type TraderAggregate struct {
	Name      string  `json:"name"`
	Party     *string `json:"party"` // first-seen party, null when unknown
	Buys      int     `json:"buys"`
	Sells     int     `json:"sells"`
	Volume    int64   `json:"volume"`
	Tickers   int     `json:"tickers"` // distinct tickers traded
	Conflicts int     `json:"conflicts"`
}

// Stats is the full set of per-run rollups.
type Stats struct {
	PopularStocks []StockAggregate  `json:"popular_stocks"`
	Sectors       []SectorAggregate `json:"sectors"`
	PartyStats    PartyStats        `json:"party_stats"`
	TopTraders    []TraderAggregate `json:"top_traders"`
}
