package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeError struct {
	Code string
}

func (e storeError) Error() string { return "store error " + e.Code }

func TestNew(t *testing.T) {
	err := New("namespace missing")
	require.Error(t, err)
	assert.Equal(t, "namespace missing", err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("keeps the chain", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "credential not found")
		require.Error(t, wrapped)
		assert.Equal(t, "credential not found: not found", wrapped.Error())
		assert.True(t, errors.Is(wrapped, ErrNotFound))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "ignored"))
	})

	t.Run("double wrap", func(t *testing.T) {
		inner := Wrap(ErrConflict, "concurrent write")
		outer := Wrap(inner, "failed to update credential")
		assert.True(t, Is(outer, ErrConflict))
		assert.False(t, Is(outer, ErrNotFound))
	})
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("repository: %w", storeError{Code: "40001"})

	var target storeError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "40001", target.Code)
}

func TestStandardErrors(t *testing.T) {
	tests := []struct {
		err  error
		text string
	}{
		{ErrNotFound, "not found"},
		{ErrConflict, "conflict"},
		{ErrInvalidInput, "invalid input"},
		{ErrUnauthorized, "unauthorized"},
		{ErrForbidden, "forbidden"},
		{ErrTimeout, "timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.text, tt.err.Error())
		})
	}
}
