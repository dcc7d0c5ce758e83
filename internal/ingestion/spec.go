package ingestion

import (
	"errors"
	"fmt"
	"sort"

	"congress-trade-lab/internal/domain"
)

// ErrInvalidSpec is returned when a SourceSpec cannot drive an adapter.
var ErrInvalidSpec = errors.New("invalid source spec")

// SourceSpec declares how one upstream's records map onto a Trade.
// Field lists are aliases tried in order; the first non-blank value wins.
type SourceSpec struct {
	Name string `yaml:"name"`

	// Chamber is fixed for single-chamber feeds. When empty, ChamberFields
	// are read per record.
	Chamber       domain.Chamber `yaml:"chamber"`
	ChamberFields []string       `yaml:"chamber_fields"`

	TickerFields    []string `yaml:"ticker_fields"`
	NameFields      []string `yaml:"name_fields"`
	FirstNameFields []string `yaml:"first_name_fields"`
	LastNameFields  []string `yaml:"last_name_fields"`

	TypeFields []string `yaml:"type_fields"`
	BuyTokens  []string `yaml:"buy_tokens"`
	SellTokens []string `yaml:"sell_tokens"`

	TxDateFields         []string `yaml:"tx_date_fields"`
	DisclosureDateFields []string `yaml:"disclosure_date_fields"`
	// TxDateFallback substitutes the disclosure date for a blank transaction date.
	TxDateFallback bool `yaml:"tx_date_fallback"`

	AmountFields     []string `yaml:"amount_fields"`
	AmountLowFields  []string `yaml:"amount_low_fields"`
	AmountHighFields []string `yaml:"amount_high_fields"`

	AssetFields []string `yaml:"asset_fields"`
	OwnerFields []string `yaml:"owner_fields"`
	PartyFields []string `yaml:"party_fields"`
}

// Validate checks that the spec has enough fields to produce trades.
func (s SourceSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidSpec)
	}
	if len(s.TickerFields) == 0 {
		return fmt.Errorf("%w: %s: ticker_fields is required", ErrInvalidSpec, s.Name)
	}
	if len(s.NameFields) == 0 && (len(s.FirstNameFields) == 0 || len(s.LastNameFields) == 0) {
		return fmt.Errorf("%w: %s: name_fields or first/last name fields required", ErrInvalidSpec, s.Name)
	}
	if len(s.TypeFields) == 0 {
		return fmt.Errorf("%w: %s: type_fields is required", ErrInvalidSpec, s.Name)
	}
	if len(s.BuyTokens) == 0 || len(s.SellTokens) == 0 {
		return fmt.Errorf("%w: %s: buy_tokens and sell_tokens are required", ErrInvalidSpec, s.Name)
	}
	for _, tok := range append(append([]string{}, s.BuyTokens...), s.SellTokens...) {
		if tok == "" {
			return fmt.Errorf("%w: %s: empty direction token", ErrInvalidSpec, s.Name)
		}
	}
	if s.Chamber == "" && len(s.ChamberFields) == 0 {
		return fmt.Errorf("%w: %s: chamber or chamber_fields is required", ErrInvalidSpec, s.Name)
	}
	if s.Chamber != "" && !s.Chamber.IsValid() {
		return fmt.Errorf("%w: %s: unknown chamber %q", ErrInvalidSpec, s.Name, s.Chamber)
	}
	return nil
}

// Built-in spec names.
const (
	SpecFMPHouse           = "fmp-house"
	SpecFMPSenate          = "fmp-senate"
	SpecHouseStockWatcher  = "house-stock-watcher"
	SpecSenateStockWatcher = "senate-stock-watcher"
	SpecQuiver             = "quiver"
	// SpecArtifact reads records in the published trade shape, as kept in
	// static fallback datasets.
	SpecArtifact = "artifact"
)

var (
	fmpTicker     = []string{"ticker", "symbol"}
	fmpTxDate     = []string{"transactionDate", "transaction_date"}
	fmpDisclosure = []string{"disclosureDate", "disclosure_date"}
	fmpAsset      = []string{"assetDescription", "asset_description"}
	fmpParty      = []string{"party", "politicalParty"}
)

var builtinSpecs = map[string]SourceSpec{
	SpecFMPHouse: {
		Name:                 SpecFMPHouse,
		Chamber:              domain.ChamberHouse,
		TickerFields:         fmpTicker,
		NameFields:           []string{"representative"},
		TypeFields:           []string{"type"},
		BuyTokens:            []string{"purchase"},
		SellTokens:           []string{"sale"},
		TxDateFields:         fmpTxDate,
		DisclosureDateFields: fmpDisclosure,
		AmountFields:         []string{"amount"},
		AssetFields:          fmpAsset,
		OwnerFields:          []string{"owner"},
		PartyFields:          fmpParty,
	},
	SpecFMPSenate: {
		Name:                 SpecFMPSenate,
		Chamber:              domain.ChamberSenate,
		TickerFields:         fmpTicker,
		NameFields:           []string{"senator", "fullName"},
		FirstNameFields:      []string{"firstName"},
		LastNameFields:       []string{"lastName"},
		TypeFields:           []string{"type"},
		BuyTokens:            []string{"purchase"},
		SellTokens:           []string{"sale", "exchange"},
		TxDateFields:         fmpTxDate,
		DisclosureDateFields: fmpDisclosure,
		AmountFields:         []string{"amount"},
		AssetFields:          fmpAsset,
		OwnerFields:          []string{"owner"},
		PartyFields:          fmpParty,
	},
	SpecHouseStockWatcher: {
		Name:                 SpecHouseStockWatcher,
		Chamber:              domain.ChamberHouse,
		TickerFields:         []string{"ticker"},
		NameFields:           []string{"representative"},
		TypeFields:           []string{"type"},
		BuyTokens:            []string{"purchase"},
		SellTokens:           []string{"sale"},
		TxDateFields:         []string{"transaction_date"},
		DisclosureDateFields: []string{"disclosure_date"},
		TxDateFallback:       true,
		AmountFields:         []string{"amount"},
		AssetFields:          []string{"asset_description"},
		OwnerFields:          []string{"owner"},
		PartyFields:          []string{"party"},
	},
	SpecSenateStockWatcher: {
		Name:                 SpecSenateStockWatcher,
		Chamber:              domain.ChamberSenate,
		TickerFields:         []string{"ticker"},
		NameFields:           []string{"senator"},
		FirstNameFields:      []string{"first_name"},
		LastNameFields:       []string{"last_name"},
		TypeFields:           []string{"type"},
		BuyTokens:            []string{"purchase"},
		SellTokens:           []string{"sale", "exchange"},
		TxDateFields:         []string{"transaction_date"},
		DisclosureDateFields: []string{"disclosure_date"},
		TxDateFallback:       true,
		AmountFields:         []string{"amount"},
		AssetFields:          []string{"asset_description"},
		OwnerFields:          []string{"owner"},
		PartyFields:          []string{"party"},
	},
	SpecQuiver: {
		Name:                 SpecQuiver,
		ChamberFields:        []string{"House", "Chamber"},
		TickerFields:         []string{"Ticker"},
		NameFields:           []string{"Representative", "Name"},
		TypeFields:           []string{"Transaction"},
		BuyTokens:            []string{"purchase"},
		SellTokens:           []string{"sale"},
		TxDateFields:         []string{"TransactionDate"},
		DisclosureDateFields: []string{"ReportDate"},
		TxDateFallback:       true,
		AmountFields:         []string{"Range"},
		AssetFields:          []string{"Description", "Company"},
		OwnerFields:          []string{"Owner"},
		PartyFields:          []string{"Party"},
	},
	SpecArtifact: {
		Name:                 SpecArtifact,
		ChamberFields:        []string{"chamber"},
		TickerFields:         []string{"ticker"},
		NameFields:           []string{"rep"},
		TypeFields:           []string{"type"},
		BuyTokens:            []string{"buy"},
		SellTokens:           []string{"sell"},
		TxDateFields:         []string{"date"},
		DisclosureDateFields: []string{"disclosure_date"},
		AmountFields:         []string{"amount"},
		AssetFields:          []string{"asset"},
		OwnerFields:          []string{"owner"},
		PartyFields:          []string{"party"},
	},
}

// BuiltinSpec returns the named built-in spec. Its slices must not be modified.
func BuiltinSpec(name string) (SourceSpec, bool) {
	s, ok := builtinSpecs[name]
	return s, ok
}

// BuiltinSpecNames returns the built-in spec names in sorted order.
func BuiltinSpecNames() []string {
	names := make([]string, 0, len(builtinSpecs))
	for n := range builtinSpecs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
