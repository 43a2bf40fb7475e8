package batch_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/pjanik/skimmer"
	"github.com/pjanik/skimmer/batch"
	"github.com/pjanik/skimmer/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newPipeline returns a pipeline whose capabilities succeed by default:
// every URL fetches a small page, cleans to the same HTML, converts to
// markdown, and extracts a payload echoing the URL.
func newPipeline() *batch.Pipeline {
	return &batch.Pipeline{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				return &skimmer.FetchedContent{
					URL:  url,
					Kind: skimmer.KindStatic,
					HTML: "<html><body><h1>Page</h1></body></html>",
				}, nil
			},
		},
		Cleaner: &mock.Cleaner{
			CleanFn: func(html string) (*skimmer.CleanResult, error) {
				return &skimmer.CleanResult{Title: "Page", ContentHTML: html}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "# Page", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(_ context.Context, text string, _ skimmer.Schema) (string, error) {
				return `{"name": "Page"}`, nil
			},
		},
	}
}

func testSchema() skimmer.Schema {
	return skimmer.Schema{"name": skimmer.TypeString}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns one outcome per URL in input order", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://example.com/a",
			"https://example.com/b",
			"https://example.com/c",
		}

		p := newPipeline()
		outcomes, err := p.Run(context.Background(), urls, testSchema(), nil)
		require.NoError(t, err)
		require.Len(t, outcomes, len(urls))

		for i, u := range urls {
			assert.Equal(t, u, outcomes[i].URL)
			assert.Equal(t, i, outcomes[i].Position)
			assert.False(t, outcomes[i].Failed())
			assert.Equal(t, map[string]any{"name": "Page"}, outcomes[i].Fields)
		}
	})

	t.Run("preserves order regardless of completion order", func(t *testing.T) {
		t.Parallel()

		// Earlier URLs sleep longer, so later URLs finish first.
		p := newPipeline()
		p.Concurrency = 4
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				if strings.HasSuffix(url, "/0") {
					time.Sleep(50 * time.Millisecond)
				}
				return &skimmer.FetchedContent{URL: url, HTML: "<html/>"}, nil
			},
		}

		urls := make([]string, 4)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://example.com/%d", i)
		}

		outcomes, err := p.Run(context.Background(), urls, testSchema(), nil)
		require.NoError(t, err)
		for i, u := range urls {
			assert.Equal(t, u, outcomes[i].URL)
		}
	})

	t.Run("isolates per-URL failures", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				if strings.HasSuffix(url, "/bad") {
					return nil, skimmer.Errorf(skimmer.EFETCH, "status 500")
				}
				return &skimmer.FetchedContent{URL: url, HTML: "<html/>"}, nil
			},
		}

		urls := []string{
			"https://example.com/good",
			"https://example.com/bad",
			"https://example.com/also-good",
		}

		outcomes, err := p.Run(context.Background(), urls, testSchema(), nil)
		require.NoError(t, err)
		require.Len(t, outcomes, 3)

		assert.False(t, outcomes[0].Failed())
		assert.True(t, outcomes[1].Failed())
		assert.Equal(t, skimmer.EFETCH, skimmer.ErrorCode(outcomes[1].Err))
		assert.False(t, outcomes[2].Failed())
	})

	t.Run("tags uncoded capability errors with the stage code", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.Converter = &mock.Converter{
			ConvertFn: func(string) (string, error) {
				return "", fmt.Errorf("broken markup")
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.True(t, outcomes[0].Failed())
		assert.Equal(t, skimmer.ENORMALIZE, skimmer.ErrorCode(outcomes[0].Err))
		assert.Equal(t, "broken markup", skimmer.ErrorMessage(outcomes[0].Err))
	})

	t.Run("records parse failures with the raw response", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.Extractor = &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string, _ skimmer.Schema) (string, error) {
				return "I could not find any data on this page.", nil
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.True(t, outcomes[0].Failed())
		assert.Equal(t, skimmer.EPARSE, skimmer.ErrorCode(outcomes[0].Err))
		assert.Equal(t, "I could not find any data on this page.", skimmer.ErrorDetail(outcomes[0].Err))
	})

	t.Run("repairs near-valid extraction output", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.Extractor = &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string, _ skimmer.Schema) (string, error) {
				return "```json\n{\"name\": \"Page\",}\n```", nil
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.False(t, outcomes[0].Failed())
		assert.Equal(t, map[string]any{"name": "Page"}, outcomes[0].Fields)
	})

	t.Run("drops payload keys outside the schema", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.Extractor = &mock.Extractor{
			ExtractFn: func(_ context.Context, _ string, _ skimmer.Schema) (string, error) {
				return `{"name": "Page", "hallucinated": 42}`, nil
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.False(t, outcomes[0].Failed())
		assert.Equal(t, map[string]any{"name": "Page"}, outcomes[0].Fields)
	})

	t.Run("truncates oversized documents head-kept and records it", func(t *testing.T) {
		t.Parallel()

		long := strings.Repeat("a", 200)
		var extracted string

		p := newPipeline()
		p.MaxContentBytes = 100
		p.Converter = &mock.Converter{
			ConvertFn: func(string) (string, error) { return long, nil },
		}
		p.Extractor = &mock.Extractor{
			ExtractFn: func(_ context.Context, text string, _ skimmer.Schema) (string, error) {
				extracted = text
				return `{"name": "Page"}`, nil
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.False(t, outcomes[0].Failed())

		assert.True(t, outcomes[0].Truncated)
		assert.True(t, strings.HasPrefix(extracted, "aaa"))
		assert.Contains(t, extracted, "content truncated")
		assert.Less(t, len(extracted), 200)
	})

	t.Run("does not split multi-byte runes when truncating", func(t *testing.T) {
		t.Parallel()

		var extracted string

		p := newPipeline()
		p.MaxContentBytes = 10
		p.Converter = &mock.Converter{
			ConvertFn: func(string) (string, error) { return strings.Repeat("é", 20), nil },
		}
		p.Extractor = &mock.Extractor{
			ExtractFn: func(_ context.Context, text string, _ skimmer.Schema) (string, error) {
				extracted = text
				return `{"name": "Page"}`, nil
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.False(t, outcomes[0].Failed())
		assert.True(t, utf8.ValidString(extracted))
	})

	t.Run("records content hash, title, and token count", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.TokenCounter = &mock.TokenCounter{
			CountTokensFn: func(_ context.Context, text string) (int, error) {
				return 42, nil
			},
		}

		outcomes, err := p.Run(context.Background(), []string{"https://example.com"}, testSchema(), nil)
		require.NoError(t, err)
		require.False(t, outcomes[0].Failed())

		assert.Equal(t, "Page", outcomes[0].Title)
		assert.Equal(t, skimmer.HashContent("# Page"), outcomes[0].ContentHash)
		assert.Equal(t, 42, outcomes[0].Tokens)
	})

	t.Run("bounds in-flight URLs by the configured concurrency", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int64
		var mu sync.Mutex

		p := newPipeline()
		p.Concurrency = 2
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				current := inFlight.Add(1)
				mu.Lock()
				if current > peak.Load() {
					peak.Store(current)
				}
				mu.Unlock()
				time.Sleep(20 * time.Millisecond)
				inFlight.Add(-1)
				return &skimmer.FetchedContent{URL: url, HTML: "<html/>"}, nil
			},
		}

		urls := make([]string, 8)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://example.com/%d", i)
		}

		_, err := p.Run(context.Background(), urls, testSchema(), nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int64(2))
	})

	t.Run("reports progress events", func(t *testing.T) {
		t.Parallel()

		p := newPipeline()
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				if strings.HasSuffix(url, "/bad") {
					return nil, skimmer.Errorf(skimmer.EFETCH, "boom")
				}
				return &skimmer.FetchedContent{URL: url, HTML: "<html/>"}, nil
			},
		}

		var mu sync.Mutex
		var started, completed, failed, finished int
		progress := func(event batch.ProgressEvent) {
			mu.Lock()
			defer mu.Unlock()
			switch event.Type {
			case batch.ProgressStarted:
				started++
				assert.Equal(t, 2, event.Total)
			case batch.ProgressCompleted:
				completed++
			case batch.ProgressFailed:
				failed++
				assert.Equal(t, "https://example.com/bad", event.URL)
			case batch.ProgressFinished:
				finished++
			}
		}

		urls := []string{"https://example.com/good", "https://example.com/bad"}
		_, err := p.Run(context.Background(), urls, testSchema(), progress)
		require.NoError(t, err)

		assert.Equal(t, 1, started)
		assert.Equal(t, 1, completed)
		assert.Equal(t, 1, failed)
		assert.Equal(t, 1, finished)
	})
}

func TestPipeline_Run_Validation(t *testing.T) {
	t.Parallel()

	// A fetcher that records whether it was ever invoked. Validation
	// failures must abort before any capability call.
	newTrackingPipeline := func(called *atomic.Bool) *batch.Pipeline {
		p := newPipeline()
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				called.Store(true)
				return &skimmer.FetchedContent{URL: url, HTML: "<html/>"}, nil
			},
		}
		return p
	}

	t.Run("rejects empty URL lists", func(t *testing.T) {
		t.Parallel()

		var called atomic.Bool
		p := newTrackingPipeline(&called)

		_, err := p.Run(context.Background(), nil, testSchema(), nil)
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
		assert.False(t, called.Load())
	})

	t.Run("rejects relative URLs", func(t *testing.T) {
		t.Parallel()

		var called atomic.Bool
		p := newTrackingPipeline(&called)

		_, err := p.Run(context.Background(), []string{"https://ok.example", "/relative/path"}, testSchema(), nil)
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
		assert.False(t, called.Load())
	})

	t.Run("rejects empty schemas", func(t *testing.T) {
		t.Parallel()

		var called atomic.Bool
		p := newTrackingPipeline(&called)

		_, err := p.Run(context.Background(), []string{"https://ok.example"}, skimmer.Schema{}, nil)
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
		assert.False(t, called.Load())
	})

	t.Run("rejects negative concurrency", func(t *testing.T) {
		t.Parallel()

		var called atomic.Bool
		p := newTrackingPipeline(&called)
		p.Concurrency = -1

		_, err := p.Run(context.Background(), []string{"https://ok.example"}, testSchema(), nil)
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
		assert.False(t, called.Load())
	})

	t.Run("rejects negative timeout", func(t *testing.T) {
		t.Parallel()

		var called atomic.Bool
		p := newTrackingPipeline(&called)
		p.Timeout = -time.Second

		_, err := p.Run(context.Background(), []string{"https://ok.example"}, testSchema(), nil)
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
		assert.False(t, called.Load())
	})

	t.Run("clamps concurrency above the ceiling", func(t *testing.T) {
		t.Parallel()

		var inFlight, peak atomic.Int64
		var mu sync.Mutex

		p := newPipeline()
		p.Concurrency = 100
		p.Fetcher = &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				current := inFlight.Add(1)
				mu.Lock()
				if current > peak.Load() {
					peak.Store(current)
				}
				mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				inFlight.Add(-1)
				return &skimmer.FetchedContent{URL: url, HTML: "<html/>"}, nil
			},
		}

		urls := make([]string, 30)
		for i := range urls {
			urls[i] = fmt.Sprintf("https://example.com/%d", i)
		}

		_, err := p.Run(context.Background(), urls, testSchema(), nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, peak.Load(), int64(batch.MaxConcurrency))
	})
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	t.Parallel()

	// Two URLs through the full mock stack: one clean success and one
	// failure, verifying the outcome shape of each.
	schema := skimmer.Schema{
		"name":  skimmer.TypeString,
		"price": skimmer.TypeNumber,
	}

	p := &batch.Pipeline{
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (*skimmer.FetchedContent, error) {
				if strings.Contains(url, "missing") {
					return nil, skimmer.Errorf(skimmer.EFETCH, "status 404")
				}
				return &skimmer.FetchedContent{
					URL:  url,
					Kind: skimmer.KindStatic,
					HTML: "<html><head><title>Widget</title></head><body><p>Widget costs $9.99</p></body></html>",
				}, nil
			},
		},
		Cleaner: &mock.Cleaner{
			CleanFn: func(html string) (*skimmer.CleanResult, error) {
				return &skimmer.CleanResult{Title: "Widget", ContentHTML: "<p>Widget costs $9.99</p>"}, nil
			},
		},
		Converter: &mock.Converter{
			ConvertFn: func(html string) (string, error) {
				return "Widget costs $9.99", nil
			},
		},
		Extractor: &mock.Extractor{
			ExtractFn: func(_ context.Context, text string, _ skimmer.Schema) (string, error) {
				return `{"name": "Widget", "price": 9.99}`, nil
			},
		},
	}

	urls := []string{"https://shop.example/widget", "https://shop.example/missing"}
	outcomes, err := p.Run(context.Background(), urls, schema, nil)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, "Widget", outcomes[0].Title)
	assert.Equal(t, map[string]any{"name": "Widget", "price": 9.99}, outcomes[0].Fields)
	assert.NotEmpty(t, outcomes[0].ContentHash)

	assert.True(t, outcomes[1].Failed())
	assert.Equal(t, skimmer.EFETCH, skimmer.ErrorCode(outcomes[1].Err))
	assert.Nil(t, outcomes[1].Fields)
}
