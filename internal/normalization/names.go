package normalization

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Honorifics are title prefixes stripped from legislator names before matching.
var Honorifics = []string{"Hon.", "Rep.", "Sen."}

var folder = cases.Fold()

// StripHonorifics removes leading honorific prefixes, repeatedly, and trims.
// "Hon. Rep. Nancy Pelosi" becomes "Nancy Pelosi".
func StripHonorifics(name string) string {
	name = strings.TrimSpace(name)
	for {
		stripped := false
		for _, h := range Honorifics {
			if len(name) > len(h) && strings.EqualFold(name[:len(h)], h) {
				name = strings.TrimSpace(name[len(h):])
				stripped = true
			}
		}
		if !stripped {
			return name
		}
	}
}

// FoldName returns a case-folded, NFC-normalized form of name with
// whitespace collapsed. Used as the comparison key for name matching.
func FoldName(name string) string {
	name = norm.NFC.String(name)
	name = strings.Join(strings.Fields(name), " ")
	return folder.String(name)
}

// NameTokens splits a folded name into tokens, dropping punctuation-only ones.
func NameTokens(name string) []string {
	fields := strings.FieldsFunc(FoldName(name), func(r rune) bool {
		return r == ' ' || r == ',' || r == '.'
	})
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Surname returns the last token of the name, or "" when there are none.
func Surname(name string) string {
	tokens := NameTokens(name)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[len(tokens)-1]
}
