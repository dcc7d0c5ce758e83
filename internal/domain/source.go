package domain

import "strings"

// Party represents a legislator's party affiliation.
type Party string

const (
	PartyDemocrat   Party = "D"
	PartyRepublican Party = "R"
	PartyUnknown    Party = ""
)

// String returns the string representation of Party.
func (p Party) String() string {
	if p == PartyUnknown {
		return "Unknown"
	}
	return string(p)
}

// IsValid checks if the party is a valid value.
func (p Party) IsValid() bool {
	return p == PartyDemocrat || p == PartyRepublican || p == PartyUnknown
}

// IsKnown reports whether the party is D or R.
func (p Party) IsKnown() bool {
	return p == PartyDemocrat || p == PartyRepublican
}

// ParseParty normalizes free text such as "Democrat", "Republican", "D" or "R".
// Anything else yields PartyUnknown.
func ParseParty(s string) Party {
	s = strings.TrimSpace(s)
	if s == "" {
		return PartyUnknown
	}
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "democrat") || strings.EqualFold(s, "D"):
		return PartyDemocrat
	case strings.Contains(lower, "republican") || strings.EqualFold(s, "R"):
		return PartyRepublican
	default:
		return PartyUnknown
	}
}

// Direction is the side of a transaction.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

// IsValid checks if the direction is a valid value.
func (d Direction) IsValid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// Chamber is the legislative chamber of the filer.
type Chamber string

const (
	ChamberHouse  Chamber = "house"
	ChamberSenate Chamber = "senate"
)

// IsValid checks if the chamber is a valid value.
func (c Chamber) IsValid() bool {
	return c == ChamberHouse || c == ChamberSenate
}

// ParseChamber maps free text ("House", "Representatives", "Senate") to a Chamber.
// Returns false when the text names neither chamber.
func ParseChamber(s string) (Chamber, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.Contains(lower, "senat"):
		return ChamberSenate, true
	case strings.Contains(lower, "house") || strings.Contains(lower, "represent"):
		return ChamberHouse, true
	default:
		return "", false
	}
}
