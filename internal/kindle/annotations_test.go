package kindle

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/kindle-notebook/internal/entities"
)

func TestParseHighlightsPage_Fixture(t *testing.T) {
	parser, _ := quietParser()

	highlights := parser.ParseHighlightsPage(fixtureDoc(t, "annotations_book1.html"), "B000000001")

	want := []entities.Highlight{
		{
			ID:       "highlight-B000000001-loc-1234",
			BookID:   "B000000001",
			Text:     "Care about your craft.",
			Location: "1234",
			Page:     12,
			Color:    "yellow",
			AppLink:  "kindle://book?action=open&asin=B000000001&location=1234",
		},
		{
			ID:       "highlight-B000000001-loc-200",
			BookID:   "B000000001",
			Text:     "Don't live with broken windows.",
			Location: "200",
			Color:    "blue",
			Note:     "Fix small problems early.",
			AppLink:  "kindle://book?action=open&asin=B000000001&location=200",
		},
	}
	if diff := cmp.Diff(want, highlights); diff != "" {
		t.Errorf("ParseHighlightsPage() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseHighlightsPage_Idempotent(t *testing.T) {
	parser, _ := quietParser()
	html := loadFixture(t, "annotations_book1.html")

	first := parser.ParseHighlightsPage(mustDoc(t, html), "B000000001")
	second := parser.ParseHighlightsPage(mustDoc(t, html), "B000000001")

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestParseHighlightsPage_NoteAdjacency(t *testing.T) {
	tests := []struct {
		name      string
		rows      []string
		wantNotes []string
	}{
		{
			name:      "note after highlight",
			rows:      []string{highlightRow("one", "1", "yellow"), noteRow("n1")},
			wantNotes: []string{"n1"},
		},
		{
			name:      "no note",
			rows:      []string{highlightRow("one", "1", "yellow"), highlightRow("two", "2", "blue")},
			wantNotes: []string{"", ""},
		},
		{
			name:      "note belongs to nearest preceding highlight",
			rows:      []string{highlightRow("one", "1", "yellow"), highlightRow("two", "2", "blue"), noteRow("n2")},
			wantNotes: []string{"", "n2"},
		},
		{
			name:      "note separated by another element",
			rows:      []string{highlightRow("one", "1", "yellow"), "<hr>", noteRow("n1")},
			wantNotes: []string{""},
		},
		{
			name:      "note separated by an empty row",
			rows:      []string{highlightRow("one", "1", "yellow"), `<div class="a-row a-spacing-base"></div>`, noteRow("n1")},
			wantNotes: []string{""},
		},
		{
			name:      "leading note is dropped",
			rows:      []string{noteRow("orphan"), highlightRow("one", "1", "yellow")},
			wantNotes: []string{""},
		},
		{
			name: "bare note sibling attaches to preceding highlight",
			rows: []string{
				highlightRow("first", "10", "yellow"),
				`<div class="kp-notebook-note"><span id="note">attached note</span></div>`,
				highlightRow("second", "20", "blue"),
			},
			wantNotes: []string{"attached note", ""},
		},
		{
			name: "bare note after a separator is dropped",
			rows: []string{
				highlightRow("first", "10", "yellow"),
				"<hr>",
				`<div class="kp-notebook-note"><span id="note">detached</span></div>`,
			},
			wantNotes: []string{""},
		},
		{
			name:      "note row without row classes is ignored",
			rows:      []string{highlightRow("one", "1", "yellow"), `<div><span id="note">unmatched</span></div>`},
			wantNotes: []string{""},
		},
		{
			name:      "empty note",
			rows:      []string{highlightRow("one", "1", "yellow"), noteRow("   ")},
			wantNotes: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, _ := quietParser()

			highlights := parser.ParseHighlightsPage(mustDoc(t, annotationPage("", "", tt.rows...)), "B1")

			notes := make([]string, 0, len(highlights))
			for _, h := range highlights {
				notes = append(notes, h.Note)
			}
			assert.Equal(t, tt.wantNotes, notes)
		})
	}
}

func TestParseHighlightsPage_InlineNote(t *testing.T) {
	parser, _ := quietParser()
	row := `<div class="a-row a-spacing-base">` +
		`<div class="kp-notebook-highlight kp-notebook-highlight-pink"><span id="highlight">inline</span></div>` +
		`<div class="kp-notebook-note"><span id="note">nested note</span></div>` +
		`</div>`

	highlights := parser.ParseHighlightsPage(mustDoc(t, annotationPage("", "", row)), "B1")

	require.Len(t, highlights, 1)
	assert.Equal(t, "nested note", highlights[0].Note)
	assert.Equal(t, "pink", highlights[0].Color)
}

func TestParseHighlightsPage_MissingOptionalFields(t *testing.T) {
	parser, _ := quietParser()
	row := `<div class="a-row a-spacing-base"><span id="highlight">The quick brown fox jumps</span></div>`

	highlights := parser.ParseHighlightsPage(mustDoc(t, annotationPage("", "", row)), "B1")

	require.Len(t, highlights, 1)
	h := highlights[0]
	assert.Equal(t, "highlight-B1-text-The-quick-", h.ID)
	assert.Empty(t, h.Location)
	assert.Empty(t, h.Color)
	assert.Empty(t, h.Note)
	assert.Empty(t, h.AppLink)
	assert.Zero(t, h.Page)
}

func TestParseHighlightsPage_NonNumericLocation(t *testing.T) {
	parser, _ := quietParser()

	highlights := parser.ParseHighlightsPage(mustDoc(t, annotationPage("", "", highlightRow("roman", "xii", "orange"))), "B1")

	require.Len(t, highlights, 1)
	assert.Equal(t, "xii", highlights[0].Location)
	assert.Equal(t, "highlight-B1-loc-xii", highlights[0].ID)
	assert.Empty(t, highlights[0].AppLink)
}

func TestParseHighlightsPage_SkipsEmptyText(t *testing.T) {
	parser, _ := quietParser()
	rows := []string{
		highlightRow("   ", "1", "yellow"),
		highlightRow("kept", "2", "yellow"),
	}

	highlights := parser.ParseHighlightsPage(mustDoc(t, annotationPage("", "", rows...)), "B1")

	require.Len(t, highlights, 1)
	assert.Equal(t, "kept", highlights[0].Text)
}

func TestParseHighlightsPage_MissingBookID(t *testing.T) {
	parser, logger := quietParser()

	highlights := parser.ParseHighlightsPage(mustDoc(t, annotationPage("", "", highlightRow("one", "1", "yellow"))), "")

	assert.NotNil(t, highlights)
	assert.Empty(t, highlights)
	require.Len(t, logger.lines, 1)
	assert.Contains(t, logger.lines[0], "no book ASIN")
}

func TestParseHighlightsPage_Empty(t *testing.T) {
	parser, _ := quietParser()

	assert.Empty(t, parser.ParseHighlightsPage(mustDoc(t, ""), "B1"))
	assert.Empty(t, parser.ParseHighlightsPage(fixtureDoc(t, "annotations_empty.html"), "B1"))
	assert.NotNil(t, parser.ParseHighlightsPage(nil, "B1"))
}

func TestAssociateNotes(t *testing.T) {
	rows := []AnnotationRow{
		{Kind: RowHighlight, FollowedBySibling: true},
		{Kind: RowNote, Note: "first"},
		{Kind: RowHighlight, FollowedBySibling: false},
		{Kind: RowNote, Note: "detached"},
		{Kind: RowHighlight, InlineNote: "inline", FollowedBySibling: true},
		{Kind: RowOther},
		{Kind: RowHighlight, InlineNote: "inline", FollowedBySibling: true},
		{Kind: RowNote, Note: "sibling wins"},
		{Kind: RowHighlight, SiblingNote: "bare sibling", InlineNote: "inline"},
	}

	notes := AssociateNotes(rows)

	assert.Equal(t, map[int]string{
		0: "first",
		4: "inline",
		6: "sibling wins",
		8: "bare sibling",
	}, notes)
}

func TestHighlightID(t *testing.T) {
	assert.Equal(t, "highlight-B1-loc-55", HighlightID("B1", "55", "ignored"))
	assert.Equal(t, "highlight-B1-text-short", HighlightID("B1", "", "short"))
	assert.Equal(t, "highlight-B1-text-吾輩は猫である。名前", HighlightID("B1", "", "吾輩は猫である。名前はまだ無い。"))
}

func TestParseContinuation(t *testing.T) {
	tests := []struct {
		name   string
		token  string
		state  string
		want   Continuation
		wantOK bool
	}{
		{"both present", "tok+/=", "state:1", Continuation{Token: "tok+/=", ContentLimitState: "state:1"}, true},
		{"token only", "tok", "", Continuation{}, false},
		{"state only", "", "state", Continuation{}, false},
		{"neither", "", "", Continuation{}, false},
		{"blank token", "  ", "state", Continuation{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser, _ := quietParser()

			got, ok := parser.ParseContinuation(mustDoc(t, annotationPage(tt.token, tt.state)))

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	parser, _ := quietParser()
	_, ok := parser.ParseContinuation(mustDoc(t, "<html></html>"))
	assert.False(t, ok)
	_, ok = parser.ParseContinuation(fixtureDoc(t, "annotations_book1.html"))
	assert.False(t, ok)
}
