// Package trafilatura provides a skimmer.Cleaner backed by go-trafilatura's
// boilerplate removal.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"github.com/pjanik/skimmer"
	"golang.org/x/net/html"
)

// Ensure Cleaner implements skimmer.Cleaner at compile time.
var _ skimmer.Cleaner = (*Cleaner)(nil)

// Cleaner wraps go-trafilatura to extract main content from HTML.
type Cleaner struct{}

// NewCleaner creates a new Cleaner.
func NewCleaner() *Cleaner {
	return &Cleaner{}
}

// Clean processes raw HTML and returns the main content with boilerplate
// (nav, footer, sidebar, ads) removed. The title comes from page metadata.
func (c *Cleaner) Clean(rawHTML string) (*skimmer.CleanResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, skimmer.Errorf(skimmer.ENORMALIZE, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.ENORMALIZE, "extracting content: %v", err)
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, skimmer.Errorf(skimmer.ENORMALIZE, "rendering content: %v", err)
		}
	}

	return &skimmer.CleanResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
