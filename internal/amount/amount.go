// Package amount converts disclosed dollar-range labels into point estimates.
package amount

import (
	"strings"
	"unicode"
)

// Band is one disclosure range and its point estimate.
type Band struct {
	Label    string
	Estimate int64
}

// Bands is the fixed disclosure table. The open-ended top band uses its floor.
var Bands = []Band{
	{"$1,001 - $15,000", 8000},
	{"$15,001 - $50,000", 32500},
	{"$50,001 - $100,000", 75000},
	{"$100,001 - $250,000", 175000},
	{"$250,001 - $500,000", 375000},
	{"$500,001 - $1,000,000", 750000},
	{"$1,000,001 - $5,000,000", 3000000},
	{"$5,000,001 - $25,000,000", 15000000},
	{"$25,000,001 - $50,000,000", 37500000},
	{"$50,000,000 +", 50000000},
}

var bandIndex = func() map[string]int64 {
	m := make(map[string]int64, len(Bands))
	for _, b := range Bands {
		m[Canonical(b.Label)] = b.Estimate
	}
	return m
}()

// Estimate returns the point estimate for a range label, or 0 when the label
// is empty or not one of the known bands.
func Estimate(label string) int64 {
	c := Canonical(label)
	if c == "" {
		return 0
	}
	return bandIndex[c]
}

// FromBounds returns the midpoint of numeric bounds when both are present,
// truncated toward zero. Otherwise it falls back to Estimate(label).
func FromBounds(low, high *int64, label string) int64 {
	if low == nil || high == nil {
		return Estimate(label)
	}
	lo, hi := clamp(*low), clamp(*high)
	// lo/2 + hi/2 avoids overflow near MaxInt64
	return lo/2 + hi/2 + (lo%2+hi%2)/2
}

func clamp(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Canonical normalizes spacing and dash variants so that labels such as
// "$1,001–$15,000" and "$1,001 - $15,000" compare equal.
func Canonical(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		switch {
		case r == '–' || r == '—' || r == '−':
			b.WriteRune('-')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}
	fields := strings.Fields(b.String())
	s := strings.Join(fields, " ")
	if s == "" {
		return ""
	}

	// Normalize spacing around separators: "a-b" → "a - b", "a+" → "a +".
	s = strings.ReplaceAll(s, " - ", "-")
	s = strings.ReplaceAll(s, " -", "-")
	s = strings.ReplaceAll(s, "- ", "-")
	s = strings.ReplaceAll(s, "-", " - ")
	s = strings.ReplaceAll(s, " +", "+")
	s = strings.ReplaceAll(s, "+", " +")
	return strings.TrimSpace(s)
}
