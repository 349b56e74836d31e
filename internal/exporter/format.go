package exporter

import (
	"strconv"
	"strings"
)

// formatBool formats a boolean value for CSV output
func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// formatIntPtr renders a nullable int; nil becomes an empty cell, never
// a sentinel value.
func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// formatInt64Ptr renders a nullable int64 identifier
func formatInt64Ptr(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// formatStrPtr renders a nullable string
func formatStrPtr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// formatSplit re-joins a per-year split with hyphens, matching the
// sheet's own notation ("4-4-4").
func formatSplit(split []int) string {
	if len(split) == 0 {
		return ""
	}
	parts := make([]string, len(split))
	for i, v := range split {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, "-")
}
