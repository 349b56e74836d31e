package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "initials lose periods",
			input:    "A.J. Brown",
			expected: "aj brown",
		},
		{
			name:     "generational suffix dropped",
			input:    "Odell Beckham Jr.",
			expected: "odell beckham",
		},
		{
			name:     "roman numeral suffix dropped",
			input:    "Jeff Wilson III",
			expected: "jeff wilson",
		},
		{
			name:     "sr suffix dropped",
			input:    "Marvin Harrison Sr.",
			expected: "marvin harrison",
		},
		{
			name:     "diacritics stripped",
			input:    "Tomás Martínez",
			expected: "tomas martinez",
		},
		{
			name:     "hyphen and abbreviated saint preserved",
			input:    "Amon-Ra St. Brown",
			expected: "amon-ra st brown",
		},
		{
			name:     "interior whitespace collapsed",
			input:    "  Josh   Allen ",
			expected: "josh allen",
		},
		{
			name:     "stacked suffixes all dropped",
			input:    "Frank Gore Jr. II",
			expected: "frank gore",
		},
		{
			name:     "lone suffix token survives",
			input:    "Jr",
			expected: "jr",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeNameIdempotent(t *testing.T) {
	inputs := []string{"A.J. Brown", "Odell Beckham Jr.", "Tomás Martínez"}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once), "normalizing twice must not change the key for %q", in)
	}
}
