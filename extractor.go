package skimmer

import "context"

// Extractor asks a language model to extract the schema's fields from a
// page's normalized text. It returns the model's raw response, which is
// expected to be JSON but may be near-valid; the caller owns repair and
// parsing. Fields the model could not identify may be omitted or null.
//
// Which vendor or model backs the interface is irrelevant to callers.
type Extractor interface {
	// Extract requests field values for the schema from the given text.
	// The context controls timeout and cancellation.
	Extract(ctx context.Context, text string, schema Schema) (string, error)
}
