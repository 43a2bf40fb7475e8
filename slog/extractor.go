package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pjanik/skimmer"
)

// Ensure LoggingExtractor implements skimmer.Extractor.
var _ skimmer.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   skimmer.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next skimmer.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract logs the extraction call and delegates to the wrapped extractor.
func (e *LoggingExtractor) Extract(ctx context.Context, text string, schema skimmer.Schema) (raw string, err error) {
	defer func(begin time.Time) {
		e.logger.Info("extract",
			"input_bytes", len(text),
			"fields", len(schema),
			"output_bytes", len(raw),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, text, schema)
}
