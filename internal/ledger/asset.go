package ledger

import (
	"regexp"
	"strings"

	"github.com/zazu-22/ff-data-analytics-sub000/pkg/contracts/domain"
)

// loosePickPattern is deliberately wider than pickLabelPattern: any subject
// carrying a four-digit year and the word "Round" is treated as a pick even
// when the strict parser later rejects it. That gap is what routes malformed
// pick labels into the unmapped-pick QA table instead of the player path.
var loosePickPattern = regexp.MustCompile(`(?i)\b\d{4}\b.*\bround\b`)

// defensePosition is the sheet's team-defense position sentinel.
const defensePosition = "DEF"

// InferAssetType classifies a transaction subject into one of the five
// asset kinds. The checks are ordered and the function is total: every
// (subject, position) pair maps to exactly one kind, never an error.
func InferAssetType(subject, position string) domain.AssetType {
	subj := strings.TrimSpace(subject)
	pos := strings.TrimSpace(position)

	switch {
	case loosePickPattern.MatchString(subj):
		return domain.AssetPick
	case strings.Contains(strings.ToLower(subj), "cap space"):
		return domain.AssetCapSpace
	case strings.EqualFold(pos, defensePosition):
		return domain.AssetDefense
	case subj != "" && !isNoValue(pos):
		return domain.AssetPlayer
	default:
		return domain.AssetUnknown
	}
}
