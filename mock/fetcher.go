package mock

import (
	"context"

	"github.com/pjanik/skimmer"
)

var _ skimmer.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of skimmer.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) (*skimmer.FetchedContent, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (*skimmer.FetchedContent, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
