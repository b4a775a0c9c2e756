package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes(t *testing.T) {
	t.Run("Validation", func(t *testing.T) {
		err := NewValidation("title is required")
		assert.True(t, IsValidation(err))
		assert.False(t, IsNotFound(err))
		assert.Equal(t, "title is required", Message(err))
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NewNotFound("decision not found")
		assert.True(t, IsNotFound(err))
		assert.False(t, IsValidation(err))
	})

	t.Run("Internal", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		err := NewInternal("failed to persist decision", cause)
		assert.True(t, IsInternal(err))
		assert.ErrorIs(t, err, cause)
	})
}

func TestWrap(t *testing.T) {
	t.Run("NilIsNil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "context"))
	})

	t.Run("PreservesType", func(t *testing.T) {
		err := Wrap(NewNotFound("branch not found"), "simulate failed")
		assert.True(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "simulate failed")
		assert.Contains(t, err.Error(), "branch not found")
	})

	t.Run("ForeignErrorBecomesInternal", func(t *testing.T) {
		err := Wrap(errors.New("boom"), "query failed")
		assert.True(t, IsInternal(err))
	})

	t.Run("TypeSurvivesFmtWrapping", func(t *testing.T) {
		inner := NewValidation("postConfidence must be between 1 and 5")
		outer := fmt.Errorf("commit: %w", inner)
		require.True(t, IsValidation(outer))
		assert.Equal(t, "postConfidence must be between 1 and 5", Message(outer))
	})
}
