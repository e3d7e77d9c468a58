package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	t.Run("matches wrapped coded error", func(t *testing.T) {
		err := fmt.Errorf("refresh: %w", New(CodeUnavailable, "source down"))
		assert.True(t, HasCode(err, CodeUnavailable))
		assert.False(t, HasCode(err, CodeBadRequest))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})

	t.Run("wrap keeps underlying error reachable", func(t *testing.T) {
		cause := errors.New("dial tcp: refused")
		err := Wrap(cause, CodeUnavailable, "could not load submissions")
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, CodeUnavailable, CodeOf(err))
		assert.Contains(t, err.Error(), "could not load submissions")
	})
}
