package reporting

import (
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"congress-trade-lab/internal/ingestion"
	"congress-trade-lab/internal/pipeline"
)

func TestRenderMarkdown(t *testing.T) {
	res := sampleResult(t)
	res.Sources = []pipeline.SourceReport{
		{Tier: "live", Source: "fmp-house", Fetched: 3, Accepted: 2, Rejected: 1},
		{Tier: "live", Source: "fmp-senate", Err: ingestion.NewSourceError("fmp-senate", 0, errors.New("status 503 | retry"))},
	}
	res.Duplicates = 4
	res.WindowedOut = 2

	md := RenderMarkdown(NewSummary("run-1", res))

	for _, want := range []string{
		"# Congress Trades Run Report",
		"Run: `run-1`",
		"Tier: live | Window from: 2024-02-02",
		"| Trades | 3 |",
		"| Conflicts | 1 |",
		"| Duplicates dropped | 4 |",
		"| Outside window | 2 |",
		"| live | fmp-house | 3 | 2 | 1 | OK |",
		"FAILED:",
		"| NVDA |",
		"$3,000,000",
		"| D | 1 | 0 | $3,000,000 | $0 | 1 |",
		"| R | 0 | 1 | $0 | $8,000 | 0 |",
		"| Nancy Pelosi | D |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "503 | retry") {
		t.Error("pipe in error text should be escaped")
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(&Summary{})
	for _, want := range []string{
		"No sources consulted.",
		"No purchases in window.",
		"No categorized purchases.",
		"No trades in window.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestFormatUSD(t *testing.T) {
	tests := map[int64]string{
		0:         "$0",
		999:       "$999",
		1000:      "$1,000",
		8000:      "$8,000",
		1000000:   "$1,000,000",
		-25000:    "-$25,000",
		123456789: "$123,456,789",
	}
	for in, want := range tests {
		if got := formatUSD(in); got != want {
			t.Errorf("formatUSD(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestRenderTradesCSV(t *testing.T) {
	res := sampleResult(t)
	out, err := RenderTradesCSV(res.Trades)
	if err != nil {
		t.Fatalf("RenderTradesCSV failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid csv: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "date" || len(rows[0]) != len(tradeCSVHeader) {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][5] != "NVDA" || rows[1][9] != "3000000" || rows[1][11] != "true" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if rows[2][6] != "AT&T Inc." {
		t.Errorf("asset not preserved: %q", rows[2][6])
	}
	if rows[3][3] != "" {
		t.Errorf("unknown party should be blank, got %q", rows[3][3])
	}
}
