// Package htmltomarkdown provides a skimmer.Converter backed by the
// html-to-markdown library.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/pjanik/skimmer"
)

// Ensure Converter implements skimmer.Converter at compile time.
var _ skimmer.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown.
// The table plugin is enabled because tabular data is a common source of
// extraction fields.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", skimmer.Errorf(skimmer.ENORMALIZE, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", skimmer.Errorf(skimmer.ENORMALIZE, "converting to markdown: %v", err)
	}

	return result, nil
}
