package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultService(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	require.NotNil(t, service)

	impl, ok := service.(*defaultService)
	require.True(t, ok, "Expected *defaultService type")
	assert.NotNil(t, impl.params)
}

func TestApply(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Now().UTC()

	t.Run("nil state", func(t *testing.T) {
		t.Parallel()
		_, err := service.Apply(nil, 2, now)
		assert.ErrorIs(t, err, ErrNilState)
	})

	t.Run("score out of range", func(t *testing.T) {
		t.Parallel()
		state := domain.NewCardMemoryState(uuid.New(), uuid.New())
		for _, score := range []int{-1, 4, 10} {
			_, err := service.Apply(state, score, now)
			assert.ErrorIs(t, err, ErrInvalidScore)
			assert.ErrorIs(t, err, domain.ErrInvalidScore)
		}
	})

	t.Run("returns new state", func(t *testing.T) {
		t.Parallel()
		state := domain.NewCardMemoryState(uuid.New(), uuid.New())
		next, err := service.Apply(state, 3, now)
		require.NoError(t, err)
		assert.NotSame(t, state, next)
		assert.Equal(t, 1, next.Repetitions)
		assert.Equal(t, 0, state.Repetitions)
		assert.Equal(t, state.UserID, next.UserID)
		assert.Equal(t, state.CardID, next.CardID)
	})

	t.Run("same inputs give same output", func(t *testing.T) {
		t.Parallel()
		state := domain.NewCardMemoryState(uuid.New(), uuid.New())
		a, err := service.Apply(state, 2, now)
		require.NoError(t, err)
		b, err := service.Apply(state, 2, now)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestPostpone(t *testing.T) {
	t.Parallel()
	service := NewDefaultService()
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
	due := now.Add(time.Hour)

	state := domain.NewCardMemoryState(uuid.New(), uuid.New())
	state.NextDueAt = &due

	next, err := service.Postpone(state, 3, now)
	require.NoError(t, err)
	assert.Equal(t, due.AddDate(0, 0, 3), *next.NextDueAt)
	assert.Equal(t, due, *state.NextDueAt, "input must not change")

	fresh := domain.NewCardMemoryState(uuid.New(), uuid.New())
	next, err = service.Postpone(fresh, 1, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 1), *next.NextDueAt)

	_, err = service.Postpone(state, 0, now)
	assert.ErrorIs(t, err, ErrInvalidDays)
	_, err = service.Postpone(nil, 1, now)
	assert.ErrorIs(t, err, ErrNilState)
}
