// Package goquery provides a selector-based skimmer.Cleaner. It is a
// lightweight alternative to the trafilatura cleaner: instead of content
// heuristics it strips a fixed set of boilerplate elements and keeps the
// page's main container.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pjanik/skimmer"
)

// boilerplateSelectors are removed from the document before the main
// content is chosen.
var boilerplateSelectors = []string{
	"script",
	"style",
	"noscript",
	"iframe",
	"svg",
	"nav",
	"header",
	"footer",
	"aside",
	"form",
	"[role=navigation]",
	"[role=banner]",
	"[aria-hidden=true]",
}

// contentSelectors are tried in order; the first non-empty match becomes
// the cleaned content. The body is the fallback.
var contentSelectors = []string{
	"main",
	"article",
	"[role=main]",
	"#content",
	".content",
}

// Ensure Cleaner implements skimmer.Cleaner at compile time.
var _ skimmer.Cleaner = (*Cleaner)(nil)

// Cleaner strips boilerplate from HTML using CSS selectors.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean processes raw HTML and returns the main content.
func (c *Cleaner) Clean(rawHTML string) (*skimmer.CleanResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, skimmer.Errorf(skimmer.ENORMALIZE, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, skimmer.Errorf(skimmer.ENORMALIZE, "parsing HTML: %v", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title == "" {
		title = strings.TrimSpace(og)
	}

	for _, selector := range boilerplateSelectors {
		doc.Find(selector).Remove()
	}

	content := selectContent(doc)
	contentHTML, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.ENORMALIZE, "rendering content: %v", err)
	}

	return &skimmer.CleanResult{
		Title:       title,
		ContentHTML: contentHTML,
	}, nil
}

// selectContent returns the first matching content container, falling back
// to the body.
func selectContent(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() > 0 && strings.TrimSpace(sel.Text()) != "" {
			return sel
		}
	}
	return doc.Find("body").First()
}
