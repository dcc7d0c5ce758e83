package ingestion

import (
	"strings"

	"congress-trade-lab/internal/amount"
	"congress-trade-lab/internal/conflict"
	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/normalization"
	"congress-trade-lab/internal/reference"
)

// Adapter converts one raw source record into a canonical trade.
// It returns false when the record must be dropped.
type Adapter interface {
	Adapt(raw RawRecord) (domain.Trade, bool)
}

// SpecAdapter is an Adapter driven by a declarative SourceSpec.
type SpecAdapter struct {
	spec     SourceSpec
	ref      *reference.Store
	detector *conflict.Detector
}

var _ Adapter = (*SpecAdapter)(nil)

// NewSpecAdapter creates an adapter for spec. The spec must be valid.
func NewSpecAdapter(spec SourceSpec, ref *reference.Store, detector *conflict.Detector) *SpecAdapter {
	return &SpecAdapter{spec: spec, ref: ref, detector: detector}
}

// Spec returns the spec driving the adapter.
func (a *SpecAdapter) Spec() SourceSpec {
	return a.spec
}

// Adapt implements Adapter.
func (a *SpecAdapter) Adapt(raw RawRecord) (domain.Trade, bool) {
	s := a.spec

	ticker := raw.String(s.TickerFields...)
	if ticker == "" || domain.IsTickerSentinel(ticker) {
		return domain.Trade{}, false
	}

	name := raw.String(s.NameFields...)
	if name == "" && len(s.FirstNameFields) > 0 {
		first := raw.String(s.FirstNameFields...)
		last := raw.String(s.LastNameFields...)
		name = strings.TrimSpace(first + " " + last)
	}
	if name == "" {
		return domain.Trade{}, false
	}

	typeText := raw.String(s.TypeFields...)
	direction, ok := classify(strings.ToLower(typeText), s.BuyTokens, s.SellTokens)
	if !ok {
		return domain.Trade{}, false
	}

	chamber := s.Chamber
	if chamber == "" {
		chamber, ok = domain.ParseChamber(raw.String(s.ChamberFields...))
		if !ok {
			return domain.Trade{}, false
		}
	}

	disclosure := normalization.NormalizeDate(raw.String(s.DisclosureDateFields...))
	txDate := normalization.NormalizeDate(raw.String(s.TxDateFields...))
	if txDate == "" && s.TxDateFallback {
		txDate = disclosure
	}

	party := domain.ParseParty(raw.String(s.PartyFields...))
	if !party.IsKnown() {
		party = a.ref.Party(name, a.detector.Mode())
	}

	sector := a.ref.Sector(ticker)
	label := raw.String(s.AmountFields...)

	var low, high *int64
	if len(s.AmountLowFields) > 0 && len(s.AmountHighFields) > 0 {
		low = raw.Int(s.AmountLowFields...)
		high = raw.Int(s.AmountHighFields...)
	}

	trade, err := domain.NewTrade(domain.Trade{
		Legislator:       name,
		Party:            party,
		Ticker:           ticker,
		AssetDescription: raw.String(s.AssetFields...),
		Direction:        direction,
		AmountRange:      label,
		AmountEstimate:   amount.FromBounds(low, high, label),
		TransactionDate:  txDate,
		DisclosureDate:   disclosure,
		Sector:           sector,
		Conflict:         a.detector.IsConflict(name, sector),
		Chamber:          chamber,
		Owner:            raw.String(s.OwnerFields...),
		Source:           s.Name, // the driver restamps this with the source name
		TypeText:         typeText,
	})
	if err != nil {
		return domain.Trade{}, false
	}
	return trade, true
}

// classify maps lowercased type text to a direction. Buy tokens win.
func classify(text string, buy, sell []string) (domain.Direction, bool) {
	if text == "" {
		return "", false
	}
	for _, tok := range buy {
		if strings.Contains(text, strings.ToLower(tok)) {
			return domain.DirectionBuy, true
		}
	}
	for _, tok := range sell {
		if strings.Contains(text, strings.ToLower(tok)) {
			return domain.DirectionSell, true
		}
	}
	return "", false
}

// AdaptAll runs the adapter over records and returns the accepted trades in
// input order along with the number of rejected records.
func AdaptAll(a Adapter, records []RawRecord) ([]domain.Trade, int) {
	trades := make([]domain.Trade, 0, len(records))
	rejected := 0
	for _, r := range records {
		t, ok := a.Adapt(r)
		if !ok {
			rejected++
			continue
		}
		trades = append(trades, t)
	}
	return trades, rejected
}
