// Package genai provides a skimmer.Extractor backed by Google Gemini.
package genai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pjanik/skimmer"
	"google.golang.org/genai"
)

// Model is the Gemini model used for extraction and token counting.
const Model = "gemini-2.5-flash"

// Ensure Extractor implements skimmer.Extractor at compile time.
var _ skimmer.Extractor = (*Extractor)(nil)

// Extractor implements skimmer.Extractor using Google Gemini.
type Extractor struct {
	client *genai.Client
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract asks the model for the schema's field values in the given text
// and returns the model's raw response. The caller owns JSON repair and
// parsing; this method never interprets the response.
func (e *Extractor) Extract(ctx context.Context, text string, schema skimmer.Schema) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", skimmer.Errorf(skimmer.EINVALID, "text required")
	}
	if err := schema.Validate(); err != nil {
		return "", err
	}

	prompt := BuildExtractionPrompt(text, schema)
	config := BuildConfig()

	result, err := e.client.Models.GenerateContent(ctx, Model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return "", skimmer.Errorf(skimmer.EEXTRACT, "%v", err)
	}
	if result == nil {
		return "", skimmer.Errorf(skimmer.EEXTRACT, "gemini returned nil result")
	}

	return result.Text(), nil
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
// Temperature zero keeps field extraction deterministic.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract structured data from webpage content. Respond with JSON only, matching the requested structure exactly. Extract only what is explicitly shown on the page.",
			}},
		},
		Temperature: &temp,
	}
}

// BuildExtractionPrompt builds the user prompt containing the schema's
// expected shape, the extraction rules, and the page content. Fields are
// listed in sorted order so the prompt is deterministic for a given schema.
func BuildExtractionPrompt(text string, schema skimmer.Schema) string {
	var sb strings.Builder

	sb.WriteString("Extract structured data from this webpage content.\n\n")
	sb.WriteString("Return ONLY valid JSON with this exact structure (no markdown code blocks, no explanation):\n")
	sb.WriteString("{\n")
	fields := schema.Fields()
	for i, field := range fields {
		fmt.Fprintf(&sb, "  %q: \"<%s>\"", field, schema[field])
		if i < len(fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString(`Extraction rules:
- All numbers must be actual numbers (not strings)
- Remove currency symbols ($, €, etc.) from numbers
- Remove commas from numbers (1,500 → 1500)
- Dates should be ISO format (YYYY-MM-DD) if possible
- If a field is not visible on the page, use null
- Phone numbers: keep as strings in original format
- Arrays: extract all matching items found
- Be precise - only extract what's explicitly shown`)

	sb.WriteString("\n\nWebpage content:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nExtract the data now:")

	return sb.String()
}
