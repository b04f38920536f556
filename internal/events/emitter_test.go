package events

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/scry-adaptive/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reviewEvent(t *testing.T) *Event {
	t.Helper()
	event, err := NewEvent(TypeReviewRecorded, ReviewRecorded{ReviewID: uuid.New(), Score: 2})
	require.NoError(t, err)
	return event
}

func TestBusRoutesByType(t *testing.T) {
	t.Parallel()
	_, l := logger.NewTestLogger(t)
	bus := NewBus(l)

	reviews := &MockEventHandler{}
	others := &MockEventHandler{}
	bus.Subscribe(TypeReviewRecorded, reviews)
	bus.Subscribe("card.postponed", others)

	event := reviewEvent(t)
	require.NoError(t, bus.EmitEvent(context.Background(), event))

	assert.Equal(t, 1, reviews.HandledCount)
	assert.Equal(t, event, reviews.LastEvent)
	assert.Zero(t, others.HandledCount)
}

func TestBusWithoutSubscribers(t *testing.T) {
	t.Parallel()
	bus := NewBus(nil)

	assert.NoError(t, bus.EmitEvent(context.Background(), reviewEvent(t)))
	assert.Error(t, bus.EmitEvent(context.Background(), nil))
}

func TestBusRunsEverySubscriberAndJoinsFailures(t *testing.T) {
	t.Parallel()
	buf, l := logger.NewTestLogger(t)
	bus := NewBus(l)

	errA, errB := errors.New("a failed"), errors.New("b failed")
	first := &MockEventHandler{HandlerError: errA}
	middle := &MockEventHandler{}
	last := &MockEventHandler{HandlerError: errB}
	bus.Subscribe(TypeReviewRecorded, first)
	bus.Subscribe(TypeReviewRecorded, middle)
	bus.Subscribe(TypeReviewRecorded, last)

	err := bus.EmitEvent(context.Background(), reviewEvent(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Equal(t, 1, first.HandledCount)
	assert.Equal(t, 1, middle.HandledCount)
	assert.Equal(t, 1, last.HandledCount)
	assert.Contains(t, buf.String(), "event handlers failed")
}

func TestSubscribeRejectsNilHandler(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() { NewBus(nil).Subscribe(TypeReviewRecorded, nil) })
}
