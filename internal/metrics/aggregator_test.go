package metrics

import (
	"fmt"
	"reflect"
	"testing"

	"congress-trade-lab/internal/domain"
)

func makeTrade(name string, party domain.Party, ticker string, dir domain.Direction, amount int64, sector string, conflict bool) domain.Trade {
	return domain.Trade{
		Legislator:     name,
		Party:          party,
		Ticker:         ticker,
		Direction:      dir,
		AmountEstimate: amount,
		Sector:         sector,
		Conflict:       conflict,
	}
}

func TestPopularStocks_NVDA(t *testing.T) {
	trades := []domain.Trade{
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "NVDA", domain.DirectionBuy, 3000000, "반도체", true),
		makeTrade("Michael McCaul", domain.PartyRepublican, "NVDA", domain.DirectionBuy, 750000, "반도체", true),
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "NVDA", domain.DirectionBuy, 375000, "반도체", true),
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "NVDA", domain.DirectionSell, 8000, "반도체", true),
	}

	stats, _ := Compute(trades)

	if len(stats.PopularStocks) != 1 {
		t.Fatalf("expected 1 popular stock, got %d", len(stats.PopularStocks))
	}
	nvda := stats.PopularStocks[0]
	if nvda.Ticker != "NVDA" || nvda.Count != 3 || nvda.Volume != 4125000 || nvda.Traders != 2 {
		t.Errorf("NVDA = %+v, want count 3, volume 4125000, traders 2", nvda)
	}
	if nvda.Conflicts != 3 {
		t.Errorf("Conflicts = %d, want 3", nvda.Conflicts)
	}
	if nvda.Sector == nil || *nvda.Sector != "반도체" {
		t.Errorf("Sector = %v, want 반도체", nvda.Sector)
	}
}

func TestPartyStats_UnknownIgnored(t *testing.T) {
	trades := []domain.Trade{
		makeTrade("Jane Doe", domain.PartyUnknown, "AAPL", domain.DirectionSell, 8000, "테크", false),
		makeTrade("Ro Khanna", domain.PartyDemocrat, "AAPL", domain.DirectionSell, 32500, "테크", true),
		makeTrade("Dan Crenshaw", domain.PartyRepublican, "XOM", domain.DirectionBuy, 75000, "에너지", true),
	}

	stats, _ := Compute(trades)

	d := stats.PartyStats[domain.PartyDemocrat]
	r := stats.PartyStats[domain.PartyRepublican]
	if d.Sell != 1 || d.SellVol != 32500 || d.Conflicts != 1 {
		t.Errorf("D = %+v", *d)
	}
	if r.Buy != 1 || r.BuyVol != 75000 || r.Sell != 0 {
		t.Errorf("R = %+v", *r)
	}
	if len(stats.PartyStats) != 2 {
		t.Errorf("party stats should only hold D and R, got %d entries", len(stats.PartyStats))
	}
}

func TestSectors_ExcludesOtherAndUnresolved(t *testing.T) {
	trades := []domain.Trade{
		makeTrade("A", domain.PartyUnknown, "ZZZZ", domain.DirectionBuy, 1000, domain.SectorOther, false),
		makeTrade("A", domain.PartyUnknown, "QQQ", domain.DirectionBuy, 1000, "", false),
		makeTrade("A", domain.PartyUnknown, "XOM", domain.DirectionBuy, 500, "에너지", false),
		makeTrade("B", domain.PartyUnknown, "NVDA", domain.DirectionBuy, 900, "반도체", true),
		makeTrade("B", domain.PartyUnknown, "NVDA", domain.DirectionSell, 99999, "반도체", true),
	}

	stats, _ := Compute(trades)

	want := []domain.SectorAggregate{
		{Name: "반도체", Value: 900, Count: 1, Conflicts: 1},
		{Name: "에너지", Value: 500, Count: 1},
	}
	if !reflect.DeepEqual(stats.Sectors, want) {
		t.Errorf("Sectors = %+v, want %+v", stats.Sectors, want)
	}

	// Other still counts toward popular stocks.
	found := false
	for _, s := range stats.PopularStocks {
		if s.Ticker == "ZZZZ" {
			found = true
		}
		if s.Ticker == "QQQ" && s.Sector != nil {
			t.Error("unresolved sector should be null")
		}
	}
	if !found {
		t.Error("ZZZZ missing from popular stocks")
	}
}

func TestTopTraders(t *testing.T) {
	trades := []domain.Trade{
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "NVDA", domain.DirectionBuy, 3000000, "반도체", true),
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "AAPL", domain.DirectionSell, 750000, "테크", true),
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "NVDA", domain.DirectionSell, 8000, "반도체", true),
		makeTrade("Jane Doe", domain.PartyUnknown, "XOM", domain.DirectionBuy, 8000000, "에너지", false),
	}

	stats, _ := Compute(trades)

	if len(stats.TopTraders) != 2 {
		t.Fatalf("got %d traders", len(stats.TopTraders))
	}
	first, second := stats.TopTraders[0], stats.TopTraders[1]
	if first.Name != "Jane Doe" || first.Party != nil {
		t.Errorf("first = %+v", first)
	}
	if second.Buys != 1 || second.Sells != 2 || second.Volume != 3758000 || second.Tickers != 2 || second.Conflicts != 3 {
		t.Errorf("second = %+v", second)
	}
	if second.Party == nil || *second.Party != "D" {
		t.Errorf("party = %v, want D", second.Party)
	}
}

func TestRollups_StableTopN(t *testing.T) {
	var trades []domain.Trade
	for i := 0; i < 25; i++ {
		trades = append(trades, makeTrade(fmt.Sprintf("Rep %02d", i), domain.PartyUnknown,
			fmt.Sprintf("T%02d", i), domain.DirectionBuy, 1000, "", false))
	}

	stats, _ := Compute(trades)

	if len(stats.PopularStocks) != TopStocksLimit {
		t.Fatalf("popular stocks = %d, want %d", len(stats.PopularStocks), TopStocksLimit)
	}
	if len(stats.TopTraders) != TopTradersLimit {
		t.Fatalf("top traders = %d, want %d", len(stats.TopTraders), TopTradersLimit)
	}
	// All ties: input order is kept.
	for i, s := range stats.PopularStocks {
		if s.Ticker != fmt.Sprintf("T%02d", i) {
			t.Errorf("popular[%d] = %s", i, s.Ticker)
		}
	}
	for i, tr := range stats.TopTraders {
		if tr.Name != fmt.Sprintf("Rep %02d", i) {
			t.Errorf("traders[%d] = %s", i, tr.Name)
		}
	}
}

func TestCompute_Idempotent(t *testing.T) {
	trades := []domain.Trade{
		makeTrade("Nancy Pelosi", domain.PartyDemocrat, "NVDA", domain.DirectionBuy, 3000000, "반도체", true),
		makeTrade("Dan Crenshaw", domain.PartyRepublican, "XOM", domain.DirectionSell, 75000, "에너지", true),
		makeTrade("Jane Doe", domain.PartyUnknown, "AAPL", domain.DirectionBuy, 8000, "테크", false),
	}

	s1, t1 := Compute(trades)
	s2, t2 := Compute(trades)

	if !reflect.DeepEqual(s1, s2) || t1 != t2 {
		t.Error("Compute is not deterministic")
	}
	if t1 != (Totals{Trades: 3, Buys: 2, Sells: 1, Conflicts: 2}) {
		t.Errorf("Totals = %+v", t1)
	}
}

func TestCompute_Empty(t *testing.T) {
	stats, totals := Compute(nil)

	if len(stats.PopularStocks) != 0 || len(stats.Sectors) != 0 || len(stats.TopTraders) != 0 {
		t.Errorf("expected empty rollups, got %+v", stats)
	}
	if stats.PopularStocks == nil || stats.Sectors == nil || stats.TopTraders == nil {
		t.Error("rollups should be empty slices so they encode as []")
	}
	if stats.PartyStats[domain.PartyDemocrat] == nil || stats.PartyStats[domain.PartyRepublican] == nil {
		t.Error("party stats should always hold D and R")
	}
	if totals != (Totals{}) {
		t.Errorf("Totals = %+v", totals)
	}
}
