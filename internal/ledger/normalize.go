// Package ledger implements the league sheet normalization core: the
// multi-block GM tab parser, the transaction ledger parser, and the pure
// classification helpers they share. Every component in this package is a
// synchronous transform over in-memory grids; loading and persistence live
// in internal/sheets and internal/exporter.
package ledger

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// suffixTokens are generational suffixes dropped from the end of a player
// name before identity matching. Matching happens after lowercasing and
// period removal, so "Jr." arrives here as "jr".
var suffixTokens = map[string]struct{}{
	"jr":  {},
	"sr":  {},
	"ii":  {},
	"iii": {},
	"iv":  {},
}

// NormalizeName reduces a player display name to the canonical matching key
// used by the identity crosswalk: lowercase, diacritics and periods removed,
// trailing generational suffixes dropped, whitespace collapsed.
//
//	NormalizeName("A.J. Brown")        == "aj brown"
//	NormalizeName("Odell Beckham Jr.") == "odell beckham"
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = stripDiacritics(s)
	s = strings.ReplaceAll(s, ".", "")

	fields := strings.Fields(s)
	for len(fields) > 1 {
		last := fields[len(fields)-1]
		if _, ok := suffixTokens[last]; !ok {
			break
		}
		fields = fields[:len(fields)-1]
	}
	return strings.Join(fields, " ")
}

// stripDiacritics decomposes to NFD and drops combining marks, so that
// "Tomás" and "Tomas" produce the same key.
func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return norm.NFC.String(b.String())
}
