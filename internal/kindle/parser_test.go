package kindle

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "short", in: "abc", n: 5, want: "abc"},
		{name: "ascii", in: "abcdef", n: 3, want: "abc..."},
		{name: "backs off to rune start", in: "日本語", n: 4, want: "日..."},
		{name: "exact rune boundary", in: "日本語", n: 6, want: "日本..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}

func TestSnippet_JapaneseTitle(t *testing.T) {
	title := strings.Repeat("吾輩は猫である", 30)
	doc := mustDoc(t, libraryPage(`<div class="kp-notebook-library-each-book"><h2>`+title+`</h2></div>`))

	got := snippet(doc.Find(".kp-notebook-library-each-book"))

	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.LessOrEqual(t, len(got), 303)
}
