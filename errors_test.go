package skimmer_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/pjanik/skimmer"
	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	t.Parallel()

	t.Run("returns code for application errors", func(t *testing.T) {
		t.Parallel()
		err := skimmer.Errorf(skimmer.EFETCH, "connection refused")
		assert.Equal(t, skimmer.EFETCH, skimmer.ErrorCode(err))
	})

	t.Run("returns code for wrapped application errors", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("processing page: %w", skimmer.Errorf(skimmer.EPARSE, "bad JSON"))
		assert.Equal(t, skimmer.EPARSE, skimmer.ErrorCode(err))
	})

	t.Run("returns EINTERNAL for non-application errors", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, skimmer.EINTERNAL, skimmer.ErrorCode(errors.New("boom")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", skimmer.ErrorCode(nil))
	})
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns message for application errors", func(t *testing.T) {
		t.Parallel()
		err := skimmer.Errorf(skimmer.EINVALID, "schema must declare at least one field")
		assert.Equal(t, "schema must declare at least one field", skimmer.ErrorMessage(err))
	})

	t.Run("masks non-application errors", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "Internal error.", skimmer.ErrorMessage(errors.New("secret detail")))
	})

	t.Run("returns empty string for nil", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", skimmer.ErrorMessage(nil))
	})
}

func TestErrorDetail(t *testing.T) {
	t.Parallel()

	t.Run("returns detail when present", func(t *testing.T) {
		t.Parallel()
		err := &skimmer.Error{Code: skimmer.EPARSE, Message: "could not parse", Detail: "not json at all"}
		assert.Equal(t, "not json at all", skimmer.ErrorDetail(err))
	})

	t.Run("returns empty string otherwise", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "", skimmer.ErrorDetail(errors.New("boom")))
	})
}
