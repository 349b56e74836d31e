package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// pickLabelPattern recognizes the ledger's draft-pick asset labels,
// e.g. "2025 1st Round" or "2026 3rd Round (via Sharks)".
var pickLabelPattern = regexp.MustCompile(`(?i)^(\d{4})\s+(\d+)(?:st|nd|rd|th)\s+Round\b`)

// ParsePickID normalizes a draft-pick reference into its canonical
// identifier. A numeric pick number yields "{year}_R{round}_P{pick:02d}";
// a TBD or otherwise non-numeric pick number yields "{year}_R{round}_TBD".
// Labels that do not match the pick pattern return nil: the asset is not
// a pick.
//
//	ParsePickID("2025 1st Round", "4")   -> "2025_R1_P04"
//	ParsePickID("2025 1st Round", "TBD") -> "2025_R1_TBD"
//	ParsePickID("Christian McCaffrey", "-") -> nil
func ParsePickID(assetLabel, rawPick string) *string {
	m := pickLabelPattern.FindStringSubmatch(strings.TrimSpace(assetLabel))
	if m == nil {
		return nil
	}
	year, round := m[1], m[2]

	var id string
	if n, err := strconv.Atoi(strings.TrimSpace(rawPick)); err == nil {
		id = fmt.Sprintf("%s_R%s_P%02d", year, round, n)
	} else {
		id = fmt.Sprintf("%s_R%s_TBD", year, round)
	}
	return &id
}
