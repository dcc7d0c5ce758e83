package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// ErrInvalidTrade is returned by NewTrade when a required field is missing.
var ErrInvalidTrade = errors.New("invalid trade")

// AssetDescriptionLimit is the maximum number of runes kept from an asset description.
const AssetDescriptionLimit = 60

// Trade is one canonical disclosed securities transaction.
// Values are built once by NewTrade and passed by value afterwards.
type Trade struct {
	Legislator       string    // filer display name, as given by the source
	Party            Party     // D | R | Unknown
	Ticker           string    // uppercase, never a placeholder sentinel
	AssetDescription string    // truncated to AssetDescriptionLimit runes
	Direction        Direction // buy | sell
	AmountRange      string    // disclosed range label, may be empty
	AmountEstimate   int64     // point estimate, 0 when unresolvable
	TransactionDate  string    // YYYY-MM-DD when parseable, may be blank
	DisclosureDate   string    // may be blank
	Sector           string    // "" when unresolved, SectorOther when uncategorized
	Conflict         bool      // legislator has jurisdiction over Sector
	Chamber          Chamber   // house | senate
	Owner            string    // self / spouse / joint ..., best effort

	// Not emitted in the artifact.
	Source   string // name of the source that produced the record
	TypeText string // raw transaction-type text, part of the dedup key
}

// NewTrade validates t and returns a normalized copy.
// Ticker is trimmed and uppercased, the asset description is truncated.
func NewTrade(t Trade) (Trade, error) {
	t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
	t.Legislator = strings.TrimSpace(t.Legislator)

	if t.Ticker == "" || IsTickerSentinel(t.Ticker) {
		return Trade{}, ErrInvalidTrade
	}
	if t.Legislator == "" {
		return Trade{}, ErrInvalidTrade
	}
	if !t.Direction.IsValid() {
		return Trade{}, ErrInvalidTrade
	}
	if !t.Party.IsValid() {
		t.Party = PartyUnknown
	}
	if t.AmountEstimate < 0 {
		t.AmountEstimate = 0
	}
	t.AssetDescription = truncateRunes(t.AssetDescription, AssetDescriptionLimit)
	return t, nil
}

// HasSector reports whether the ticker resolved to a sector (including SectorOther).
func (t Trade) HasSector() bool {
	return t.Sector != ""
}

// IsBuy reports whether the trade is a purchase.
func (t Trade) IsBuy() bool {
	return t.Direction == DirectionBuy
}

// tradeJSON is the artifact wire shape of a trade.
type tradeJSON struct {
	Rep            string  `json:"rep"`
	Party          *string `json:"party"`
	Ticker         string  `json:"ticker"`
	Asset          string  `json:"asset"`
	Type           string  `json:"type"`
	Amount         string  `json:"amount"`
	AmountMid      int64   `json:"amount_mid"`
	Date           string  `json:"date"`
	DisclosureDate string  `json:"disclosure_date"`
	Sector         *string `json:"sector"`
	Conflict       bool    `json:"conflict"`
	Chamber        string  `json:"chamber"`
	Owner          string  `json:"owner"`
}

// MarshalJSON emits the artifact shape. Unknown party and unresolved sector become null.
func (t Trade) MarshalJSON() ([]byte, error) {
	out := tradeJSON{
		Rep:            t.Legislator,
		Ticker:         t.Ticker,
		Asset:          t.AssetDescription,
		Type:           string(t.Direction),
		Amount:         t.AmountRange,
		AmountMid:      t.AmountEstimate,
		Date:           t.TransactionDate,
		DisclosureDate: t.DisclosureDate,
		Conflict:       t.Conflict,
		Chamber:        string(t.Chamber),
		Owner:          t.Owner,
	}
	if t.Party.IsKnown() {
		p := string(t.Party)
		out.Party = &p
	}
	if t.HasSector() {
		s := t.Sector
		out.Sector = &s
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// TickerSentinels denote non-equity instruments that are not tracked.
var TickerSentinels = []string{"--", "N/A"}

// IsTickerSentinel reports whether ticker is a placeholder value.
func IsTickerSentinel(ticker string) bool {
	ticker = strings.TrimSpace(ticker)
	for _, s := range TickerSentinels {
		if strings.EqualFold(ticker, s) {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
