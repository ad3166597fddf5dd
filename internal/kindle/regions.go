package kindle

import (
	"fmt"
	"net/url"
	"sort"
)

// Region describes one Amazon storefront hosting a Kindle notebook.
type Region struct {
	Code           string
	DisplayName    string
	Host           string // e.g. "amazon.co.jp"
	AssocHandle    string
	CloudReaderURL string
	NotebookURL    string
	LogoutURL      string
	// DateGrammar selects the "last annotated" date format.
	DateGrammar DateGrammar
}

// DateGrammar names a locale-specific date format used on the library page.
type DateGrammar string

const (
	DateGrammarEnglish  DateGrammar = "en"
	DateGrammarJapanese DateGrammar = "ja"
)

// LoginURL is the Amazon sign-in page that returns to the cloud reader.
func (r Region) LoginURL() string {
	q := url.Values{}
	q.Set("openid.pape.max_auth_age", "0")
	q.Set("openid.return_to", r.CloudReaderURL)
	q.Set("openid.identity", "http://specs.openid.net/auth/2.0/identifier_select")
	q.Set("openid.assoc_handle", r.AssocHandle)
	q.Set("openid.mode", "checkid_setup")
	q.Set("openid.claimed_id", "http://specs.openid.net/auth/2.0/identifier_select")
	q.Set("openid.ns", "http://specs.openid.net/auth/2.0")
	return fmt.Sprintf("https://www.%s/ap/signin?%s", r.Host, q.Encode())
}

func newRegion(code, name, host, assoc string, grammar DateGrammar) Region {
	return Region{
		Code:           code,
		DisplayName:    name,
		Host:           host,
		AssocHandle:    assoc,
		CloudReaderURL: fmt.Sprintf("https://read.%s/", host),
		NotebookURL:    fmt.Sprintf("https://read.%s/notebook", host),
		LogoutURL:      fmt.Sprintf("https://www.%s/gp/flex/sign-out.html", host),
		DateGrammar:    grammar,
	}
}

var regions = map[string]Region{
	"com":    newRegion("com", "USA (.com)", "amazon.com", "amzn_kp_mobile_us", DateGrammarEnglish),
	"co.jp":  newRegion("co.jp", "Japan (.co.jp)", "amazon.co.jp", "amzn_kp_mobile_jp", DateGrammarJapanese),
	"co.uk":  newRegion("co.uk", "UK (.co.uk)", "amazon.co.uk", "amzn_kp_mobile_uk", DateGrammarEnglish),
	"de":     newRegion("de", "Germany (.de)", "amazon.de", "amzn_kp_mobile_de", DateGrammarEnglish),
	"fr":     newRegion("fr", "France (.fr)", "amazon.fr", "amzn_kp_mobile_fr", DateGrammarEnglish),
	"es":     newRegion("es", "Spain (.es)", "amazon.es", "amzn_kp_mobile_es", DateGrammarEnglish),
	"it":     newRegion("it", "Italy (.it)", "amazon.it", "amzn_kp_mobile_it", DateGrammarEnglish),
	"ca":     newRegion("ca", "Canada (.ca)", "amazon.ca", "amzn_kp_mobile_ca", DateGrammarEnglish),
	"com.au": newRegion("com.au", "Australia (.com.au)", "amazon.com.au", "amzn_kp_mobile_au", DateGrammarEnglish),
	"com.br": newRegion("com.br", "Brazil (.com.br)", "amazon.com.br", "amzn_kp_mobile_br", DateGrammarEnglish),
	"com.mx": newRegion("com.mx", "Mexico (.com.mx)", "amazon.com.mx", "amzn_kp_mobile_mx", DateGrammarEnglish),
	"in":     newRegion("in", "India (.in)", "amazon.in", "amzn_kp_mobile_in", DateGrammarEnglish),
}

// LookupRegion returns the region for a code such as "com" or "co.jp".
func LookupRegion(code string) (Region, error) {
	r, ok := regions[code]
	if !ok {
		return Region{}, fmt.Errorf("%w: %q", ErrUnknownRegion, code)
	}
	return r, nil
}

// Regions lists all supported regions ordered by code.
func Regions() []Region {
	out := make([]Region, 0, len(regions))
	for _, r := range regions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// dateGrammarFor picks the grammar for a region code; unknown codes use English.
func dateGrammarFor(code string) DateGrammar {
	if r, ok := regions[code]; ok {
		return r.DateGrammar
	}
	return DateGrammarEnglish
}

// FirstPageURL is the annotation listing for a book with an empty cursor.
func (r Region) FirstPageURL(asin string) string {
	return r.pageURL(asin, Continuation{})
}

// NextPageURL builds the listing URL for the page following c.
func (r Region) NextPageURL(asin string, c Continuation) string {
	return r.pageURL(asin, c)
}

func (r Region) pageURL(asin string, c Continuation) string {
	q := url.Values{}
	q.Set("asin", asin)
	q.Set("contentLimitState", c.ContentLimitState)
	if c.Token != "" {
		q.Set("token", c.Token)
	}
	return r.NotebookURL + "?" + q.Encode()
}
