// Package conflict flags trades where the filer's committee jurisdiction
// covers the traded ticker's sector.
package conflict

import (
	"congress-trade-lab/internal/domain"
	"congress-trade-lab/internal/reference"
)

// Detector decides whether a (legislator, sector) pair is a potential conflict.
type Detector struct {
	ref  *reference.Store
	mode reference.MatchMode
}

// NewDetector creates a detector over the given reference data.
func NewDetector(ref *reference.Store, mode reference.MatchMode) *Detector {
	if mode == "" {
		mode = reference.MatchFuzzy
	}
	return &Detector{ref: ref, mode: mode}
}

// Mode returns the name matching mode in use.
func (d *Detector) Mode() reference.MatchMode {
	return d.mode
}

// IsConflict reports whether sector is in the jurisdiction set of the
// profile matching name. Unresolved and uncategorized sectors never conflict.
func (d *Detector) IsConflict(name, sector string) bool {
	if sector == "" || sector == domain.SectorOther {
		return false
	}
	profile, ok := d.ref.Lookup(name, d.mode)
	if !ok {
		return false
	}
	return profile.HasSector(sector)
}
