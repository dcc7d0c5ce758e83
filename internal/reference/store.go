// Package reference holds the static lookup tables used during normalization:
// legislator profiles, ticker sectors, sector jurisdiction descriptions,
// party affiliations and name aliases.
package reference

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/normalization"
)

// MatchMode selects how filer names are matched against profile keys.
type MatchMode string

const (
	// MatchFuzzy tries exact and alias matches, then the filer's surname
	// (equal to a key's last token, then as a substring), then long tokens.
	MatchFuzzy MatchMode = "fuzzy"
	// MatchStrict accepts only exact (case-folded) and alias matches.
	MatchStrict MatchMode = "strict"
)

// ErrUnknownMatchMode is returned by ParseMatchMode.
var ErrUnknownMatchMode = errors.New("unknown match mode")

// ParseMatchMode parses a configuration value. Empty selects MatchFuzzy.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchFuzzy:
		return MatchFuzzy, nil
	case MatchStrict:
		return MatchStrict, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMatchMode, s)
	}
}

// minFuzzyTokenLen is the rune length a non-surname token must exceed to be used
// for substring matching.
const minFuzzyTokenLen = 3

// minSurnameLen is the rune length a surname token must exceed.
const minSurnameLen = 2

// Store is a read-only set of reference tables. Build it once and share it.
type Store struct {
	profiles     map[string]domain.LegislatorProfile
	keys         []string          // profile keys, sorted
	folded       map[string]string // folded profile key -> key
	aliases      map[string]string // folded alias -> key
	parties      map[string]domain.Party
	sectors      map[string]string
	jurisdiction map[string]string
}

// Tables is the raw content of a Store.
type Tables struct {
	Profiles     []domain.LegislatorProfile
	Sectors      map[string]string
	Jurisdiction map[string]string
	Parties      map[string]domain.Party
	Aliases      map[string]string
}

// Default returns the built-in reference data.
func Default() *Store {
	return New(Tables{
		Profiles:     defaultProfiles(),
		Sectors:      defaultSectors(),
		Jurisdiction: defaultJurisdiction(),
		Aliases:      defaultAliases(),
	})
}

// New builds a Store from tables. Inputs are copied.
func New(t Tables) *Store {
	s := &Store{
		profiles:     make(map[string]domain.LegislatorProfile, len(t.Profiles)),
		folded:       make(map[string]string, len(t.Profiles)),
		aliases:      make(map[string]string, len(t.Aliases)),
		parties:      make(map[string]domain.Party, len(t.Parties)),
		sectors:      make(map[string]string, len(t.Sectors)),
		jurisdiction: make(map[string]string, len(t.Jurisdiction)),
	}

	for _, p := range t.Profiles {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			continue
		}
		p.Name = name
		p.Committees = cloneStrings(p.Committees)
		p.Subcommittees = cloneStrings(p.Subcommittees)
		p.Jurisdiction = cloneStrings(p.Jurisdiction)
		p.Sectors = cloneStrings(p.Sectors)
		s.profiles[name] = p
		s.folded[normalization.FoldName(name)] = name
	}
	for name := range s.profiles {
		s.keys = append(s.keys, name)
	}
	sort.Strings(s.keys)

	for alias, key := range t.Aliases {
		if _, ok := s.profiles[key]; ok {
			s.aliases[normalization.FoldName(alias)] = key
		}
	}
	for name, party := range t.Parties {
		if party.IsKnown() {
			s.parties[normalization.FoldName(name)] = party
		}
	}
	for ticker, sector := range t.Sectors {
		ticker = strings.ToUpper(strings.TrimSpace(ticker))
		if ticker != "" && sector != "" {
			s.sectors[ticker] = sector
		}
	}
	for sector, desc := range t.Jurisdiction {
		s.jurisdiction[sector] = desc
	}
	return s
}

// Tables returns a copy of the store's content, suitable for merging.
func (s *Store) Tables() Tables {
	t := Tables{
		Profiles:     s.Profiles(),
		Sectors:      make(map[string]string, len(s.sectors)),
		Jurisdiction: s.SectorJurisdiction(),
		Parties:      make(map[string]domain.Party, len(s.parties)),
		Aliases:      make(map[string]string, len(s.aliases)),
	}
	for k, v := range s.sectors {
		t.Sectors[k] = v
	}
	for k, v := range s.parties {
		t.Parties[k] = v
	}
	for k, v := range s.aliases {
		t.Aliases[k] = v
	}
	return t
}

// Sector returns the sector for a ticker.
// Blank or placeholder tickers yield "" (unresolved). Unmapped tickers yield
// domain.SectorOther.
func (s *Store) Sector(ticker string) string {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if ticker == "" || domain.IsTickerSentinel(ticker) {
		return ""
	}
	if sector, ok := s.sectors[ticker]; ok {
		return sector
	}
	return domain.SectorOther
}

// Lookup finds the profile for a filer name using the given mode.
func (s *Store) Lookup(name string, mode MatchMode) (domain.LegislatorProfile, bool) {
	key, ok := s.match(name, mode)
	if !ok {
		return domain.LegislatorProfile{}, false
	}
	return s.profiles[key], true
}

// Party resolves a filer's party from the reference tables.
// Profiles are consulted first (using mode), then the standalone party table.
func (s *Store) Party(name string, mode MatchMode) domain.Party {
	if p, ok := s.Lookup(name, mode); ok && p.Party.IsKnown() {
		return p.Party
	}
	if party, ok := s.parties[normalization.FoldName(normalization.StripHonorifics(name))]; ok {
		return party
	}
	return domain.PartyUnknown
}

func (s *Store) match(name string, mode MatchMode) (string, bool) {
	clean := normalization.StripHonorifics(name)
	if clean == "" {
		return "", false
	}
	if _, ok := s.profiles[clean]; ok {
		return clean, true
	}
	folded := normalization.FoldName(clean)
	if key, ok := s.folded[folded]; ok {
		return key, true
	}
	if key, ok := s.aliases[folded]; ok {
		return key, true
	}
	if mode == MatchStrict {
		return "", false
	}

	surname := fuzzySurname(clean)
	if surname != "" {
		for _, key := range s.keys {
			if normalization.Surname(key) == surname {
				return key, true
			}
		}
		for _, key := range s.keys {
			if strings.Contains(normalization.FoldName(key), surname) {
				return key, true
			}
		}
	}
	for _, tok := range normalization.NameTokens(clean) {
		if tok == surname || utf8.RuneCountInString(tok) <= minFuzzyTokenLen {
			continue
		}
		for _, key := range s.keys {
			if strings.Contains(normalization.FoldName(key), tok) {
				return key, true
			}
		}
	}
	return "", false
}

// nameSuffixes never stand in for a surname.
var nameSuffixes = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true, "iv": true}

// fuzzySurname picks the surname token of a filer name. In "Last, First"
// form it comes from the part before the comma. Initials, other tokens of
// minSurnameLen runes or fewer, and generational suffixes are skipped.
func fuzzySurname(name string) string {
	if head, _, ok := strings.Cut(name, ","); ok {
		if s := lastSurnameToken(normalization.NameTokens(head)); s != "" {
			return s
		}
	}
	return lastSurnameToken(normalization.NameTokens(name))
}

func lastSurnameToken(tokens []string) string {
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		if utf8.RuneCountInString(tok) > minSurnameLen && !nameSuffixes[tok] {
			return tok
		}
	}
	return ""
}

// Profiles returns all profiles sorted by name.
func (s *Store) Profiles() []domain.LegislatorProfile {
	out := make([]domain.LegislatorProfile, 0, len(s.keys))
	for _, k := range s.keys {
		out = append(out, s.profiles[k])
	}
	return out
}

// PoliticianInfo returns the profile table keyed by name, as published in the
// artifact. When stripParty is set the internal party field is cleared.
func (s *Store) PoliticianInfo(stripParty bool) map[string]domain.LegislatorProfile {
	out := make(map[string]domain.LegislatorProfile, len(s.profiles))
	for k, p := range s.profiles {
		if stripParty {
			p = p.WithoutParty()
		}
		out[k] = p
	}
	return out
}

// SectorJurisdiction returns a copy of the sector description table.
func (s *Store) SectorJurisdiction() map[string]string {
	out := make(map[string]string, len(s.jurisdiction))
	for k, v := range s.jurisdiction {
		out[k] = v
	}
	return out
}

// Tickers returns the mapped tickers in sorted order.
func (s *Store) Tickers() []string {
	out := make([]string, 0, len(s.sectors))
	for t := range s.sectors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
