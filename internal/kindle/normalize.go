package kindle

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "By: Author", "By Author", "著者: Author", "Von: Autor", ...
	authorPrefixPattern = regexp.MustCompile(`(?i)^(?:by(?:\s*[:：]|\s+)|(?:von|par|de|di|door|著者|作者)\s*[:：])\s*`)

	// Optional "Last annotated on" style lead-in before the date itself.
	annotatedLeadIn = regexp.MustCompile(`(?i)^.*?\bon\s+`)

	// Leading weekday, with or without a trailing comma.
	weekdayPrefix = regexp.MustCompile(`(?i)^(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|tues|wed|thu|thur|thurs|fri|sat|sun)\.?,?\s+`)

	japaneseDatePattern = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日$`)

	// English long and abbreviated month-day-year layouts, tried in order.
	englishDateLayouts = []string{
		"January 2, 2006",
		"January 2 2006",
		"Jan 2, 2006",
		"Jan. 2, 2006",
		"Jan 2 2006",
	}

	trailingDigits = regexp.MustCompile(`\d+$`)
	pagePattern    = regexp.MustCompile(`(?i)page:?\s*(\d+)`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// ParseAuthor strips a locale label such as "By:" or "著者:" from raw author text.
// The bool is false when nothing usable remains.
func ParseAuthor(raw string) (string, bool) {
	author := strings.TrimSpace(raw)
	author = strings.TrimSpace(authorPrefixPattern.ReplaceAllString(author, ""))
	if author == "" {
		return "", false
	}
	return author, true
}

// ParseDate turns a "last annotated" string into a calendar date at UTC midnight.
// The region code selects the grammar. Empty or unparseable input yields nil.
func ParseDate(raw, regionCode string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	switch dateGrammarFor(regionCode) {
	case DateGrammarJapanese:
		return parseJapaneseDate(raw)
	default:
		return parseEnglishDate(raw)
	}
}

// "2021年10月24日 日曜日" -> 2021-10-24
func parseJapaneseDate(raw string) *time.Time {
	head := raw
	if i := strings.IndexAny(raw, " 　"); i >= 0 {
		head = raw[:i]
	}
	m := japaneseDatePattern.FindStringSubmatch(head)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	return strictDate(year, time.Month(month), day)
}

// "Sunday October 24, 2021", "Last annotated on Thursday, January 1, 2024", "Oct 24, 2021"
func parseEnglishDate(raw string) *time.Time {
	s := whitespaceRun.ReplaceAllString(raw, " ")
	if annotatedLeadIn.MatchString(s) {
		s = annotatedLeadIn.ReplaceAllString(s, "")
	}
	s = weekdayPrefix.ReplaceAllString(s, "")
	for _, layout := range englishDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return strictDate(t.Year(), t.Month(), t.Day())
		}
	}
	return nil
}

// strictDate rejects components that time.Date would normalize (e.g. February 30).
func strictDate(year int, month time.Month, day int) *time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return nil
	}
	return &t
}

// MapColorToken extracts the color name from a class list such as
// "kp-notebook-highlight kp-notebook-highlight-yellow".
func MapColorToken(classes string) (string, bool) {
	return mapColorToken(classes, DefaultSelectors.ColorClassPrefix)
}

func mapColorToken(classes, prefix string) (string, bool) {
	for _, class := range strings.Fields(classes) {
		if color, ok := strings.CutPrefix(class, prefix); ok && color != "" {
			return strings.ToLower(color), true
		}
	}
	return "", false
}

// normalizeLocation keeps the trailing digit run of a location value
// ("Location 1234" -> "1234"). Values without digits are returned untouched
// and numeric is false.
func normalizeLocation(raw string) (location string, number int, numeric bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", 0, false
	}
	if digits := trailingDigits.FindString(raw); digits != "" {
		n, err := strconv.Atoi(digits)
		return digits, n, err == nil
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return raw, n, true
	}
	return raw, 0, false
}

// parsePage finds "page N" in header text.
func parsePage(header string) int {
	m := pagePattern.FindStringSubmatch(header)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}
