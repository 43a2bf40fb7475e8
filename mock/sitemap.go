package mock

import (
	"context"

	"github.com/pjanik/skimmer"
)

var _ skimmer.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of skimmer.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *skimmer.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *skimmer.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
