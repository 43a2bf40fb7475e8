// Package rod provides a browser-rendering implementation of skimmer.Fetcher
// using Chrome automation, for pages that require JavaScript execution.
package rod

import (
	"context"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/pjanik/skimmer"
)

// DefaultFetchTimeout is the default per-page timeout.
// Kept consistent with http.DefaultFetchTimeout.
const DefaultFetchTimeout = 30 * time.Second

// Ensure Fetcher implements skimmer.Fetcher at compile time.
var _ skimmer.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
	timeout time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the per-page timeout applied when the caller's
// context carries no deadline. Defaults to DefaultFetchTimeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher that launches a headless Chrome browser.
// Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...FetcherOption) (*Fetcher, error) {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	manager, err := NewBrowserManager()
	if err != nil {
		return nil, err
	}
	f.manager = manager

	return f, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*skimmer.FetchedContent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "opening page: %v", err)
	}
	defer page.Close()

	// Scope all subsequent page operations to the caller's deadline.
	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "navigating to %s: %v", url, err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "waiting for %s to load: %v", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "reading rendered HTML for %s: %v", url, err)
	}

	f.manager.IncrementPageCount()

	return &skimmer.FetchedContent{
		URL:  url,
		Kind: skimmer.KindRendered,
		HTML: html,
	}, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
