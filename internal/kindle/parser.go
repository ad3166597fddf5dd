package kindle

import (
	"log"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Logger receives diagnostics about markup the parsers had to skip.
type Logger interface {
	Printf(format string, v ...any)
}

// Parser extracts books and highlights from Kindle notebook pages.
// Parsing never fails: malformed elements are dropped and logged.
type Parser struct {
	sel    Selectors
	logger Logger
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithSelectors overrides the markup selectors.
func WithSelectors(sel Selectors) ParserOption {
	return func(p *Parser) { p.sel = sel }
}

// WithLogger sets the diagnostics sink.
func WithLogger(l Logger) ParserOption {
	return func(p *Parser) { p.logger = l }
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		sel:    DefaultSelectors,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Selectors returns the selectors in use.
func (p *Parser) Selectors() Selectors {
	return p.sel
}

func (p *Parser) warnf(format string, v ...any) {
	if p.logger != nil {
		p.logger.Printf("[NOTEBOOK] "+format, v...)
	}
}

// firstText returns the trimmed text of the first match of any selector, in order.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, selector := range selectors {
		if selector == "" {
			continue
		}
		if text := strings.TrimSpace(s.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// snippet shortens an element's HTML for log output.
func snippet(s *goquery.Selection) string {
	html, err := goquery.OuterHtml(s)
	if err != nil {
		return "<unrenderable>"
	}
	html = whitespaceRun.ReplaceAllString(strings.TrimSpace(html), " ")
	return truncate(html, 300)
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
