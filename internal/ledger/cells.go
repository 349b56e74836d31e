package ledger

import (
	"strconv"
	"strings"
)

// cellAt returns the trimmed cell value at idx, tolerating ragged rows.
// CSV exports routinely omit trailing empty cells, so an out-of-range index
// is an empty cell, not an error.
func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isNoValue reports whether a cell carries the sheet's no-value sentinel.
// The league template uses "-" and blank interchangeably for "nothing here".
func isNoValue(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || t == "-"
}

// parseAmount converts a currency-ish cell ("$12", "1,250", "12") to an int.
// No-value sentinels and unparseable text yield nil.
func parseAmount(s string) *int {
	if isNoValue(s) {
		return nil
	}
	clean := strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	n, err := strconv.Atoi(clean)
	if err != nil {
		return nil
	}
	return &n
}

// parseFlag interprets the sheet's yes-style flag cells. Anything other
// than a literal "yes" (any case) is false, including the "-" sentinel.
func parseFlag(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "yes")
}
