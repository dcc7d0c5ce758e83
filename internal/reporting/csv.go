package reporting

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"congress-trade-lab/internal/domain"
)

var tradeCSVHeader = []string{
	"date", "disclosure_date", "rep", "party", "chamber", "ticker", "asset",
	"type", "amount", "amount_mid", "sector", "conflict", "owner",
}

// RenderTradesCSV renders trades as CSV, one row per trade in the given order.
func RenderTradesCSV(trades []domain.Trade) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(tradeCSVHeader); err != nil {
		return "", fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range trades {
		party := ""
		if t.Party.IsKnown() {
			party = string(t.Party)
		}
		row := []string{
			t.TransactionDate,
			t.DisclosureDate,
			t.Legislator,
			party,
			string(t.Chamber),
			t.Ticker,
			t.AssetDescription,
			string(t.Direction),
			t.AmountRange,
			strconv.FormatInt(t.AmountEstimate, 10),
			t.Sector,
			strconv.FormatBool(t.Conflict),
			t.Owner,
		}
		if err := w.Write(row); err != nil {
			return "", fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush csv: %w", err)
	}
	return buf.String(), nil
}
