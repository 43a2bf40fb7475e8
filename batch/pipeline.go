// Package batch runs schema-guided extraction over a list of URLs.
// It coordinates fetching, boilerplate removal, markdown conversion, and
// language-model extraction with bounded concurrency, producing one outcome
// per input URL with per-item failure isolation.
package batch

import (
	"context"
	"errors"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/pjanik/skimmer"
	"golang.org/x/sync/errgroup"
)

// Pipeline configuration defaults and limits.
const (
	// DefaultConcurrency is the number of URLs in flight when none is set.
	DefaultConcurrency = 5

	// MaxConcurrency is the hard ceiling on in-flight URLs. Larger
	// configured values are clamped, not rejected.
	MaxConcurrency = 10

	// DefaultTimeout applies separately to each item's fetch and extract
	// calls when no timeout is set.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxContentBytes is the normalized-document size ceiling.
	// Content beyond it is truncated head-kept before extraction.
	DefaultMaxContentBytes = 50_000

	// truncationMarker is appended to truncated documents so the model
	// (and anyone reading the stored document) can see the cut.
	truncationMarker = "\n\n[... content truncated ...]"
)

// Pipeline orchestrates batch extraction through injected capabilities.
type Pipeline struct {
	Fetcher   skimmer.Fetcher
	Cleaner   skimmer.Cleaner
	Converter skimmer.Converter
	Extractor skimmer.Extractor

	// TokenCounter, if set, records the token count of each normalized
	// document on its outcome. Optional.
	TokenCounter skimmer.TokenCounter

	// Concurrency is the worker pool size. Zero means DefaultConcurrency;
	// values above MaxConcurrency are clamped; negative values are invalid.
	Concurrency int

	// Timeout applies independently to each item's fetch call and extract
	// call. Zero means DefaultTimeout; negative values are invalid.
	Timeout time.Duration

	// MaxContentBytes is the normalized-document size ceiling. Zero means
	// DefaultMaxContentBytes.
	MaxContentBytes int
}

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Error     error
}

// ProgressType indicates the type of progress event.
type ProgressType int

const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressFinished
)

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// Run processes every URL and returns outcomes index-aligned with the input.
// Individual failures are captured in their outcome and never shrink or
// reorder the result; Run itself only errors on invalid input (EINVALID),
// before any capability is invoked.
func (p *Pipeline) Run(ctx context.Context, urls []string, schema skimmer.Schema, progress ProgressFunc) ([]skimmer.Outcome, error) {
	concurrency, timeout, maxBytes, err := p.config()
	if err != nil {
		return nil, err
	}
	if err := validateURLs(urls); err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	resultCh := make(chan skimmer.Outcome, len(urls))

	var completed atomic.Int64
	total := len(urls)

	if progress != nil {
		progress(ProgressEvent{
			Type:  ProgressStarted,
			Total: total,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			i, u := i, u
			g.Go(func() error {
				resultCh <- p.processURL(gctx, i, u, schema, timeout, maxBytes)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	// Collect results into input order.
	outcomes := make([]skimmer.Outcome, len(urls))
	for outcome := range resultCh {
		completed.Add(1)
		outcomes[outcome.Position] = outcome

		if progress != nil {
			eventType := ProgressCompleted
			if outcome.Failed() {
				eventType = ProgressFailed
			}
			progress(ProgressEvent{
				Type:      eventType,
				Completed: int(completed.Load()),
				Total:     total,
				URL:       outcome.URL,
				Error:     outcome.Err,
			})
		}
	}

	if progress != nil {
		progress(ProgressEvent{
			Type:      ProgressFinished,
			Completed: total,
			Total:     total,
		})
	}

	return outcomes, nil
}

// config resolves defaults and validates pipeline configuration.
func (p *Pipeline) config() (concurrency int, timeout time.Duration, maxBytes int, err error) {
	concurrency = p.Concurrency
	switch {
	case concurrency < 0:
		return 0, 0, 0, skimmer.Errorf(skimmer.EINVALID, "concurrency must be at least 1")
	case concurrency == 0:
		concurrency = DefaultConcurrency
	case concurrency > MaxConcurrency:
		concurrency = MaxConcurrency
	}

	timeout = p.Timeout
	if timeout < 0 {
		return 0, 0, 0, skimmer.Errorf(skimmer.EINVALID, "timeout must be positive")
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	maxBytes = p.MaxContentBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxContentBytes
	}

	return concurrency, timeout, maxBytes, nil
}

// validateURLs rejects empty lists and malformed or relative URLs before
// any network activity begins.
func validateURLs(urls []string) error {
	if len(urls) == 0 {
		return skimmer.Errorf(skimmer.EINVALID, "at least one URL required")
	}
	for _, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return skimmer.Errorf(skimmer.EINVALID, "invalid URL %q", raw)
		}
	}
	return nil
}

// processURL runs the fetch → normalize → extract → parse steps for a single
// URL, isolated from its siblings. Every failure is captured in the returned
// outcome.
func (p *Pipeline) processURL(ctx context.Context, position int, rawURL string, schema skimmer.Schema, timeout time.Duration, maxBytes int) skimmer.Outcome {
	outcome := skimmer.Outcome{
		URL:      rawURL,
		Position: position,
	}

	// Fetch with its own deadline so a slow page cannot stall the pool
	// beyond this item's timeout.
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	content, err := p.Fetcher.Fetch(fetchCtx, rawURL)
	cancel()
	if err != nil {
		outcome.Err = coded(skimmer.EFETCH, err)
		return outcome
	}

	markdown, title, err := p.normalize(content.HTML)
	if err != nil {
		outcome.Err = coded(skimmer.ENORMALIZE, err)
		return outcome
	}
	outcome.Title = title

	if len(markdown) > maxBytes {
		markdown = truncateUTF8(markdown, maxBytes) + truncationMarker
		outcome.Truncated = true
	}
	outcome.ContentHash = skimmer.HashContent(markdown)

	if p.TokenCounter != nil {
		if tokens, err := p.TokenCounter.CountTokens(ctx, markdown); err == nil {
			outcome.Tokens = tokens
		}
	}

	extractCtx, cancel := context.WithTimeout(ctx, timeout)
	raw, err := p.Extractor.Extract(extractCtx, markdown, schema)
	cancel()
	if err != nil {
		outcome.Err = coded(skimmer.EEXTRACT, err)
		return outcome
	}

	fields, err := skimmer.ParseFields(raw, schema)
	if err != nil {
		outcome.Err = err
		return outcome
	}

	outcome.Fields = fields
	return outcome
}

// normalize reduces raw HTML to compact markdown via the cleaner and
// converter.
func (p *Pipeline) normalize(html string) (markdown, title string, err error) {
	cleaned, err := p.Cleaner.Clean(html)
	if err != nil {
		return "", "", err
	}

	markdown, err = p.Converter.Convert(cleaned.ContentHTML)
	if err != nil {
		return "", "", err
	}

	return markdown, cleaned.Title, nil
}

// coded tags an error with a failure code, keeping the underlying message
// verbatim. Errors that already carry a code pass through unchanged.
func coded(code string, err error) error {
	var e *skimmer.Error
	if errors.As(err, &e) {
		return err
	}
	return skimmer.Errorf(code, "%s", err)
}

// truncateUTF8 cuts s to at most n bytes without splitting a multi-byte
// rune. The head is kept; the tail is dropped.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && s[n]&0xC0 == 0x80 {
		n--
	}
	return s[:n]
}
