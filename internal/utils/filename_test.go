package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "replaces invalid characters",
			input:    `a<b>c:d"e/f\g|h?i*j`,
			expected: "a_b_c_d_e_f_g_h_i_j",
		},
		{
			name:     "replaces newlines and tabs with spaces",
			input:    "file\nname\twith\rspaces",
			expected: "file name with spaces",
		},
		{
			name:     "collapses multiple spaces",
			input:    "file   name  with    spaces",
			expected: "file name with spaces",
		},
		{
			name:     "removes hashtags",
			input:    "#hashtag #title",
			expected: "hashtag title",
		},
		{
			name:     "replaces square brackets",
			input:    "title [subtitle]",
			expected: "title (subtitle)",
		},
		{
			name:     "trims whitespace and leading dots",
			input:    "  ..filename  ",
			expected: "filename",
		},
		{
			name:     "returns Untitled for empty",
			input:    "",
			expected: "Untitled",
		},
		{
			name:     "returns Untitled for only special chars",
			input:    "<>:?*",
			expected: "Untitled",
		},
		{
			name:     "truncates long names",
			input:    strings.Repeat("a", 250),
			expected: strings.Repeat("a", 200),
		},
		{
			name:     "truncates by runes",
			input:    strings.Repeat("猫", 250),
			expected: strings.Repeat("猫", 200),
		},
		{
			name:     "handles unicode",
			input:    "吾輩は猫である",
			expected: "吾輩は猫である",
		},
		{
			name:     "title with subtitle",
			input:    `Clean Code: A Handbook of Agile Software Craftsmanship`,
			expected: "Clean Code_ A Handbook of Agile Software Craftsmanship",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestUniqueFilename(t *testing.T) {
	seen := map[string]int{}

	assert.Equal(t, "Dune.md", UniqueFilename("Dune.md", seen))
	assert.Equal(t, "Dune (2).md", UniqueFilename("Dune.md", seen))
	assert.Equal(t, "dune (3).md", UniqueFilename("dune.md", seen))
	assert.Equal(t, "Emma.md", UniqueFilename("Emma.md", seen))
}

func TestUniqueFilename_SkipsTakenSuffix(t *testing.T) {
	seen := map[string]int{}

	assert.Equal(t, "Dune (2).md", UniqueFilename("Dune (2).md", seen))
	assert.Equal(t, "Dune.md", UniqueFilename("Dune.md", seen))
	assert.Equal(t, "Dune (3).md", UniqueFilename("Dune.md", seen))
}
