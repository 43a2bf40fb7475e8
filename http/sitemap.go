package http

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	"github.com/pjanik/skimmer"
)

// wellKnownSitemapPaths are tried, in order, when robots.txt declares no
// sitemaps.
var wellKnownSitemapPaths = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
}

// Ensure SitemapService implements skimmer.SitemapService.
var _ skimmer.SitemapService = (*SitemapService)(nil)

// SitemapService discovers URLs from website sitemaps via HTTP.
type SitemapService struct {
	client *http.Client
}

// NewSitemapService creates a new SitemapService with the given HTTP client.
// If client is nil, http.DefaultClient is used.
func NewSitemapService(client *http.Client) *SitemapService {
	if client == nil {
		client = http.DefaultClient
	}
	return &SitemapService{client: client}
}

// DiscoverURLs finds all URLs from a site's sitemap.
// Returns an empty slice (not nil) if no sitemaps are found.
func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *skimmer.URLFilter) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base, err := url.Parse(baseURL)
	if err != nil || !base.IsAbs() {
		return nil, skimmer.Errorf(skimmer.EINVALID, "invalid base URL %q", baseURL)
	}

	// Sitemaps live at the root of the domain; strip any path.
	root := *base
	root.Path = ""

	sitemapURLs, err := s.findSitemapURLs(ctx, &root)
	if err != nil {
		return nil, err
	}
	if len(sitemapURLs) == 0 {
		return []string{}, nil
	}

	// Process all sitemaps, deduplicating URLs across them. Sitemap
	// indexes commonly repeat entries between child sitemaps.
	var allURLs []string
	seenSitemaps := make(map[string]bool)
	seenURLs := make(map[string]bool)

	for _, sitemapURL := range sitemapURLs {
		urls, err := s.processSitemap(ctx, sitemapURL, seenSitemaps)
		if err != nil {
			return nil, err
		}
		for _, u := range urls {
			if !seenURLs[u] {
				seenURLs[u] = true
				allURLs = append(allURLs, u)
			}
		}
	}

	if filter != nil {
		filtered := make([]string, 0, len(allURLs))
		for _, u := range allURLs {
			if filter.Match(u) {
				filtered = append(filtered, u)
			}
		}
		return filtered, nil
	}

	return allURLs, nil
}

// findSitemapURLs discovers sitemap URLs from robots.txt or falls back to
// well-known locations.
func (s *SitemapService) findSitemapURLs(ctx context.Context, root *url.URL) ([]string, error) {
	robotsURL := root.ResolveReference(&url.URL{Path: "/robots.txt"})
	sitemaps, err := s.parseSitemapsFromRobots(ctx, robotsURL.String())
	if err == nil && len(sitemaps) > 0 {
		return sitemaps, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	for _, path := range wellKnownSitemapPaths {
		candidate := root.ResolveReference(&url.URL{Path: path}).String()
		exists, err := s.urlExists(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		if exists {
			return []string{candidate}, nil
		}
	}

	return nil, nil
}

// parseSitemapsFromRobots extracts Sitemap: directives from robots.txt.
func (s *SitemapService) parseSitemapsFromRobots(ctx context.Context, robotsURL string) ([]string, error) {
	body, err := s.fetchURL(ctx, robotsURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var sitemaps []string
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(strings.ToLower(line), "sitemap:") {
			sitemapURL := strings.TrimSpace(line[len("sitemap:"):])
			if sitemapURL != "" {
				sitemaps = append(sitemaps, sitemapURL)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading robots.txt: %w", err)
	}

	return sitemaps, nil
}

// processSitemap fetches and parses a sitemap, handling both urlset and
// sitemapindex documents. Indexes are resolved recursively.
func (s *SitemapService) processSitemap(ctx context.Context, sitemapURL string, seen map[string]bool) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Avoid processing the same sitemap twice.
	if seen[sitemapURL] {
		return nil, nil
	}
	seen[sitemapURL] = true

	body, err := s.fetchURL(ctx, sitemapURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(body); err != nil {
		return nil, fmt.Errorf("parsing sitemap XML: %w", err)
	}

	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty sitemap XML")
	}

	if root.Tag == "sitemapindex" {
		var allURLs []string
		for _, child := range root.SelectElements("sitemap") {
			loc := child.SelectElement("loc")
			if loc == nil {
				continue
			}
			childURL := strings.TrimSpace(loc.Text())
			if childURL == "" {
				continue
			}
			urls, err := s.processSitemap(ctx, childURL, seen)
			if err != nil {
				return nil, err
			}
			allURLs = append(allURLs, urls...)
		}
		return allURLs, nil
	}

	// Otherwise treat as urlset.
	var urls []string
	for _, urlEl := range root.SelectElements("url") {
		loc := urlEl.SelectElement("loc")
		if loc == nil {
			continue
		}
		if u := strings.TrimSpace(loc.Text()); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// fetchURL fetches a URL and returns the response body.
func (s *SitemapService) fetchURL(ctx context.Context, targetURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, targetURL)
	}

	return resp.Body, nil
}

// urlExists checks if a URL returns 200 OK.
func (s *SitemapService) urlExists(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, targetURL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
