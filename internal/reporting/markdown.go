package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders the run summary as Markdown.
func RenderMarkdown(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Congress Trades Run Report\n\n")
	if s.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", s.RunID))
	}
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", s.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Tier: %s | Window from: %s\n\n", s.Tier, s.Cutoff))

	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Trades | %d |\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Buys | %d |\n", s.TotalBuy))
	sb.WriteString(fmt.Sprintf("| Sells | %d |\n", s.TotalSell))
	sb.WriteString(fmt.Sprintf("| Conflicts | %d |\n", s.TotalConflicts))
	sb.WriteString(fmt.Sprintf("| Duplicates dropped | %d |\n", s.Duplicates))
	sb.WriteString(fmt.Sprintf("| Outside window | %d |\n", s.WindowedOut))
	sb.WriteString("\n")

	sb.WriteString("## Sources\n\n")
	if len(s.Sources) > 0 {
		sb.WriteString("| Tier | Source | Fetched | Accepted | Rejected | Status |\n")
		sb.WriteString("|------|--------|---------|----------|----------|--------|\n")
		for _, r := range s.Sources {
			status := "OK"
			if r.Error != "" {
				status = "FAILED: " + escapeCell(r.Error)
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %d | %s |\n",
				r.Tier, r.Source, r.Fetched, r.Accepted, r.Rejected, status))
		}
	} else {
		sb.WriteString("No sources consulted.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Popular Stocks\n\n")
	if len(s.Stocks) > 0 {
		sb.WriteString("| Ticker | Sector | Buys | Volume | Traders | Conflicts |\n")
		sb.WriteString("|--------|--------|------|--------|---------|-----------|\n")
		for _, r := range s.Stocks {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %d | %d |\n",
				r.Ticker, orDash(r.Sector), r.Count, formatUSD(r.Volume), r.Traders, r.Conflicts))
		}
	} else {
		sb.WriteString("No purchases in window.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Sectors\n\n")
	if len(s.Sectors) > 0 {
		sb.WriteString("| Sector | Volume | Buys | Conflicts |\n")
		sb.WriteString("|--------|--------|------|-----------|\n")
		for _, r := range s.Sectors {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d |\n", r.Name, formatUSD(r.Value), r.Count, r.Conflicts))
		}
	} else {
		sb.WriteString("No categorized purchases.\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Parties\n\n")
	sb.WriteString("| Party | Buys | Sells | Buy Volume | Sell Volume | Conflicts |\n")
	sb.WriteString("|-------|------|-------|------------|-------------|-----------|\n")
	for _, r := range s.Parties {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %s | %s | %d |\n",
			r.Party, r.Buy, r.Sell, formatUSD(r.BuyVol), formatUSD(r.SellVol), r.Conflicts))
	}
	sb.WriteString("\n")

	sb.WriteString("## Top Traders\n\n")
	if len(s.Traders) > 0 {
		sb.WriteString("| Name | Party | Buys | Sells | Volume | Tickers | Conflicts |\n")
		sb.WriteString("|------|-------|------|-------|--------|---------|-----------|\n")
		for _, r := range s.Traders {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %d | %s | %d | %d |\n",
				r.Name, orDash(r.Party), r.Buys, r.Sells, formatUSD(r.Volume), r.Tickers, r.Conflicts))
		}
	} else {
		sb.WriteString("No trades in window.\n")
	}

	return sb.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

// formatUSD renders whole dollars with thousands separators.
func formatUSD(v int64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	digits := fmt.Sprintf("%d", v)
	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteByte('$')
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
