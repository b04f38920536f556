package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"generic error", errors.New("some error"), false},
		{"ErrNotFound", ErrNotFound, true},
		{"wrapped ErrNotFound", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"ErrCardNotFound", ErrCardNotFound, true},
		{"ErrDocumentNotFound", ErrDocumentNotFound, true},
		{"ErrTopicNotFound", ErrTopicNotFound, true},
		{"ErrCardStateNotFound", ErrCardStateNotFound, true},
		{"wrapped ErrTopicStateNotFound", fmt.Errorf("x: %w", ErrTopicStateNotFound), true},
		{"store error around card not found", NewStoreError("card", "get", "missing", ErrCardNotFound), true},
		{"duplicate", ErrCardStateExists, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsNotFoundError(tt.err))
		})
	}
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()
	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrCardStateExists))
	assert.True(t, IsDuplicateError(fmt.Errorf("create: %w", ErrCardStateExists)))
	assert.False(t, IsDuplicateError(ErrCardNotFound))
	assert.False(t, IsDuplicateError(nil))
}

func TestStoreError(t *testing.T) {
	t.Parallel()
	inner := errors.New("connection reset")

	err := NewStoreError("review", "create", "insert failed", inner)
	assert.Equal(t, "create operation on review failed: insert failed: connection reset", err.Error())
	assert.ErrorIs(t, err, inner)

	var se *StoreError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &se))
	assert.Equal(t, "review", se.Entity)

	bare := NewStoreError("card", "get", "bad id", nil)
	assert.Equal(t, "get operation on card failed: bad id", bare.Error())
}
