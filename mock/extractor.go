package mock

import (
	"context"

	"github.com/pjanik/skimmer"
)

var _ skimmer.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of skimmer.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, text string, schema skimmer.Schema) (string, error)
}

func (e *Extractor) Extract(ctx context.Context, text string, schema skimmer.Schema) (string, error) {
	return e.ExtractFn(ctx, text, schema)
}
