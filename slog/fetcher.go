// Package slog provides logging decorators for skimmer interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/pjanik/skimmer"
)

// Ensure LoggingFetcher implements skimmer.Fetcher.
var _ skimmer.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with debug logging.
type LoggingFetcher struct {
	next   skimmer.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next skimmer.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch logs the URL being fetched and delegates to the wrapped fetcher.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string) (content *skimmer.FetchedContent, err error) {
	defer func(begin time.Time) {
		var bytes int
		var kind skimmer.ContentKind
		if content != nil {
			bytes = len(content.HTML)
			kind = content.Kind
		}
		f.logger.Info("fetch",
			"url", url,
			"kind", kind,
			"bytes", bytes,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, url)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
