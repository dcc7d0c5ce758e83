package domain

// SectorOther is the bucket for tickers that are known but not categorized.
// It counts toward totals but never toward sector rollups or conflicts.
const SectorOther = "Other"

// LegislatorProfile is static reference data about one legislator.
type LegislatorProfile struct {
	Name          string   `json:"-" yaml:"name"`
	DisplayName   string   `json:"name_ko" yaml:"display_name"`
	Committees    []string `json:"committees" yaml:"committees"`
	Subcommittees []string `json:"subcommittees" yaml:"subcommittees"`
	Jurisdiction  []string `json:"jurisdiction" yaml:"jurisdiction"`
	Sectors       []string `json:"sectors" yaml:"sectors"` // conflict set
	Note          string   `json:"note" yaml:"note"`
	Party         Party    `json:"party,omitempty" yaml:"party"`
}

// HasSector reports whether sector is in the profile's conflict set.
func (p *LegislatorProfile) HasSector(sector string) bool {
	for _, s := range p.Sectors {
		if s == sector {
			return true
		}
	}
	return false
}

// WithoutParty returns a copy with internal-only fields cleared.
func (p LegislatorProfile) WithoutParty() LegislatorProfile {
	p.Party = PartyUnknown
	return p
}
