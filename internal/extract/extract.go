// Package extract turns raw HTML into the text and selector fields consumed
// by the pipeline. Both functions are pure: no I/O, no failure modes
// beyond per-selector error markers.
package extract

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	readability "github.com/go-shiori/go-readability"
)

// Text extracts the readable body text of a page. Readability handles
// article pages well; anything it rejects goes through a whole-document
// goquery pass with boilerplate tags stripped.
func Text(html, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err == nil {
		if t := collapse(article.TextContent); t != "" {
			return t
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find("script, style, noscript, header, footer, nav").Remove()
	return collapse(doc.Text())
}

// Selectors evaluates each CSS selector against the document. A selector
// with no match maps to nil; one that does not compile maps to an error
// marker string so a single bad selector never poisons the rest.
func Selectors(html string, selectors []string) map[string]*string {
	out := make(map[string]*string, len(selectors))
	doc, docErr := goquery.NewDocumentFromReader(strings.NewReader(html))
	for _, sel := range selectors {
		if docErr != nil {
			out[sel] = errMarker(docErr)
			continue
		}
		matcher, err := cascadia.Compile(sel)
		if err != nil {
			out[sel] = errMarker(err)
			continue
		}
		node := doc.FindMatcher(matcher).First()
		if node.Length() == 0 {
			out[sel] = nil
			continue
		}
		text := collapse(node.Text())
		out[sel] = &text
	}
	return out
}

func errMarker(err error) *string {
	msg := fmt.Sprintf("[ERROR] %v", err)
	return &msg
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
