package genai_test

import (
	"context"
	"strings"
	"testing"

	"github.com/pjanik/skimmer"
	skimgenai "github.com/pjanik/skimmer/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildExtractionPrompt(t *testing.T) {
	t.Parallel()

	schema := skimmer.Schema{
		"price": skimmer.TypeNumber,
		"name":  skimmer.TypeString,
		"tags":  skimmer.TypeArray,
	}

	t.Run("lists fields in sorted order with type placeholders", func(t *testing.T) {
		t.Parallel()

		prompt := skimgenai.BuildExtractionPrompt("page text", schema)

		assert.Contains(t, prompt, `"name": "<string>"`)
		assert.Contains(t, prompt, `"price": "<number>"`)
		assert.Contains(t, prompt, `"tags": "<array>"`)

		// Sorted order: name before price before tags.
		name := strings.Index(prompt, `"name"`)
		price := strings.Index(prompt, `"price"`)
		tags := strings.Index(prompt, `"tags"`)
		assert.Less(t, name, price)
		assert.Less(t, price, tags)
	})

	t.Run("is deterministic for a given schema", func(t *testing.T) {
		t.Parallel()

		first := skimgenai.BuildExtractionPrompt("page text", schema)
		second := skimgenai.BuildExtractionPrompt("page text", schema)
		assert.Equal(t, first, second)
	})

	t.Run("includes the extraction rules and the content", func(t *testing.T) {
		t.Parallel()

		prompt := skimgenai.BuildExtractionPrompt("# Deluxe Widget\n$49.99", schema)

		assert.Contains(t, prompt, "Extraction rules:")
		assert.Contains(t, prompt, "use null")
		assert.Contains(t, prompt, "Remove currency symbols")
		assert.Contains(t, prompt, "Webpage content:\n# Deluxe Widget\n$49.99")
		assert.Contains(t, prompt, "Extract the data now:")
	})
}

func TestBuildConfig(t *testing.T) {
	t.Parallel()

	config := skimgenai.BuildConfig()
	require.NotNil(t, config.Temperature)
	assert.Equal(t, float32(0), *config.Temperature)
	require.NotNil(t, config.SystemInstruction)
	assert.Contains(t, config.SystemInstruction.Parts[0].Text, "JSON only")
}

func TestExtractor_Extract_Validation(t *testing.T) {
	t.Parallel()

	// Validation failures return before the API client is touched, so a nil
	// client is safe here.
	e := skimgenai.NewExtractor(nil)

	t.Run("rejects empty text", func(t *testing.T) {
		t.Parallel()

		_, err := e.Extract(context.Background(), "  ", skimmer.Schema{"name": skimmer.TypeString})
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
	})

	t.Run("rejects invalid schemas", func(t *testing.T) {
		t.Parallel()

		_, err := e.Extract(context.Background(), "text", skimmer.Schema{})
		require.Error(t, err)
		assert.Equal(t, skimmer.EINVALID, skimmer.ErrorCode(err))
	})
}
