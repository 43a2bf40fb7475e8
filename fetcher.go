package skimmer

import "context"

// ContentKind identifies how a page's content was obtained.
type ContentKind string

// Content kinds.
const (
	// KindStatic is content retrieved with a plain HTTP GET.
	KindStatic ContentKind = "static"

	// KindRendered is content captured from a browser after script execution.
	KindRendered ContentKind = "rendered"
)

// FetchedContent is the raw markup retrieved for one URL, tagged with the
// URL it came from and how it was obtained. It lives only for the duration
// of a single item's processing and is never persisted.
type FetchedContent struct {
	URL  string
	Kind ContentKind
	HTML string
}

// Fetcher retrieves page content from URLs.
// Implementations may use browser automation to handle JavaScript-rendered
// content. Which fetcher a pipeline uses is a wiring decision; the pipeline
// does not attempt to detect which pages need rendering.
type Fetcher interface {
	// Fetch retrieves the content at the URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (*FetchedContent, error)

	// Close releases fetcher resources (e.g. a browser process).
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
