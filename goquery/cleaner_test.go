package goquery_test

import (
	"testing"

	"github.com/pjanik/skimmer"
	"github.com/pjanik/skimmer/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_Clean(t *testing.T) {
	t.Parallel()

	t.Run("keeps the main container and strips boilerplate", func(t *testing.T) {
		t.Parallel()

		rawHTML := `<html>
<head><title>Widget</title><script>track()</script></head>
<body>
	<nav>Home | Shop</nav>
	<main><h1>Deluxe Widget</h1><p>$49.99</p></main>
	<footer>Copyright</footer>
</body>
</html>`

		c := goquery.NewCleaner()
		result, err := c.Clean(rawHTML)
		require.NoError(t, err)

		assert.Equal(t, "Widget", result.Title)
		assert.Contains(t, result.ContentHTML, "Deluxe Widget")
		assert.NotContains(t, result.ContentHTML, "track()")
		assert.NotContains(t, result.ContentHTML, "Copyright")
	})

	t.Run("falls back to body when no content container exists", func(t *testing.T) {
		t.Parallel()

		rawHTML := `<html><body><p>Just a paragraph.</p></body></html>`

		c := goquery.NewCleaner()
		result, err := c.Clean(rawHTML)
		require.NoError(t, err)
		assert.Contains(t, result.ContentHTML, "Just a paragraph.")
	})

	t.Run("uses og:title when title tag is missing", func(t *testing.T) {
		t.Parallel()

		rawHTML := `<html><head><meta property="og:title" content="OG Widget"></head>
<body><main><p>content</p></main></body></html>`

		c := goquery.NewCleaner()
		result, err := c.Clean(rawHTML)
		require.NoError(t, err)
		assert.Equal(t, "OG Widget", result.Title)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		c := goquery.NewCleaner()
		_, err := c.Clean("")
		require.Error(t, err)
		assert.Equal(t, skimmer.ENORMALIZE, skimmer.ErrorCode(err))
	})
}
