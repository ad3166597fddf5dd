package kindle

// Selectors is the markup contract with the Kindle notebook pages.
// Amazon changes this markup without notice; every selector the parsers use
// lives here so a redesign is a one-struct edit.
type Selectors struct {
	// Library listing (one element per book).
	BookEntry             string
	BookASINAttr          string
	BookTitle             string
	BookTitleFallback     string
	BookAuthor            string
	BookAuthorFallback    string
	BookImage             string
	BookLastAnnotated     string
	BookReadMoreLink      string
	ReadMoreASINParameter string

	// Annotation listing. Highlight rows and note rows share AnnotationRow.
	AnnotationRow       string
	HighlightText       string
	HighlightLocation   string
	HighlightPageHeader string
	HighlightColor      string
	NoteRow             string
	NoteText            string

	// Hidden inputs carrying the pagination cursor.
	NextPageToken     string
	ContentLimitState string

	// ColorClassPrefix precedes the color name in the highlight element's class list.
	ColorClassPrefix string
}

// DefaultSelectors matches read.amazon.<region>/notebook as of the last markup revision.
var DefaultSelectors = Selectors{
	BookEntry:             ".kp-notebook-library-each-book",
	BookASINAttr:          "id",
	BookTitle:             "h2.kp-notebook-metadata",
	BookTitleFallback:     "h2.kp-notebook-searchable",
	BookAuthor:            "p.kp-notebook-metadata",
	BookAuthorFallback:    "p.kp-notebook-searchable",
	BookImage:             ".kp-notebook-cover-image",
	BookLastAnnotated:     `[id^="kp-notebook-annotated-date"]`,
	BookReadMoreLink:      "a.kp-notebook-read-more-link",
	ReadMoreASINParameter: "asin",

	AnnotationRow:       ".a-row.a-spacing-base",
	HighlightText:       "#highlight",
	HighlightLocation:   "#kp-annotation-location",
	HighlightPageHeader: "#annotationHighlightHeader, .kp-annotation-page-text",
	HighlightColor:      ".kp-notebook-highlight",
	NoteRow:             ".kp-notebook-note",
	NoteText:            "#note",

	NextPageToken:     ".kp-notebook-annotations-next-page-start",
	ContentLimitState: ".kp-notebook-content-limit-state",

	ColorClassPrefix: "kp-notebook-highlight-",
}
