// Package http provides an HTTP-based implementation of skimmer.Fetcher
// for fetching content from static sites that don't require JavaScript
// rendering, and sitemap-based URL discovery.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pjanik/skimmer"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
// Kept consistent with rod.DefaultFetchTimeout.
const DefaultFetchTimeout = 30 * time.Second

// userAgent is sent with every request. Some sites refuse requests without
// a browser-like user agent.
const userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"

// Ensure Fetcher implements skimmer.Fetcher at compile time.
var _ skimmer.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests.
// Unlike rod.Fetcher, this does not execute JavaScript and is suitable
// for static sites only. Redirects are followed.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout: DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.client = &http.Client{
		Timeout: f.timeout,
	}

	return f
}

// Fetch retrieves the content at the given URL.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*skimmer.FetchedContent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "creating request for %s: %v", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "%v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, skimmer.Errorf(skimmer.EFETCH, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, skimmer.Errorf(skimmer.EFETCH, "reading body for %s: %v", url, err)
	}

	return &skimmer.FetchedContent{
		URL:  url,
		Kind: skimmer.KindStatic,
		HTML: string(body),
	}, nil
}

// Close releases resources. For HTTP fetcher this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}
