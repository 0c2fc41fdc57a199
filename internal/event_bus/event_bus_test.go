package event_bus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventBus_PublishTyped(t *testing.T) {
	// given
	bus := NewEventBus()
	var received []ScheduleEventChanged
	SubscribeTyped[ScheduleEventChanged](bus, ScheduleEventAdded, func(e EventT[ScheduleEventChanged]) error {
		received = append(received, e.Data)
		return nil
	})
	payload := ScheduleEventChanged{UserId: 1, EventId: "abc", StartTime: time.Now(), EndTime: time.Now().Add(time.Hour)}

	// when
	err := bus.Publish(NewEvent(context.Background(), ScheduleEventAdded, payload))

	// then
	require.NoError(t, err)
	require.Len(t, received, 1)
	assert.Equal(t, "abc", received[0].EventId)
}

func TestEventBus_TypeMismatchIsSkipped(t *testing.T) {
	bus := NewEventBus()
	called := false
	SubscribeTyped[ScheduleEventChanged](bus, ScheduleEventAdded, func(e EventT[ScheduleEventChanged]) error {
		called = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), ScheduleEventAdded, "not a payload"))

	require.NoError(t, err)
	assert.False(t, called)
}

func TestEventBus_HandlersRunInSubscriptionOrder(t *testing.T) {
	bus := NewEventBus()
	var order []int
	for i := 0; i < 5; i++ {
		bus.Subscribe(ScheduleEventRemoved, func(e Event) error {
			order = append(order, i)
			return nil
		})
	}

	require.NoError(t, bus.Publish(NewEvent(context.Background(), ScheduleEventRemoved, nil)))

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestEventBus_CollectsErrorsAndRecoversPanics(t *testing.T) {
	bus := NewEventBus()
	secondCalled := false
	bus.Subscribe(ScheduleEventUpdated, func(e Event) error {
		panic("boom")
	})
	bus.Subscribe(ScheduleEventUpdated, func(e Event) error {
		return errors.New("failed")
	})
	bus.Subscribe(ScheduleEventUpdated, func(e Event) error {
		secondCalled = true
		return nil
	})

	err := bus.Publish(NewEvent(context.Background(), ScheduleEventUpdated, nil))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 handler(s) failed")
	assert.True(t, secondCalled)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventBus()
	calls := 0
	unsubscribe := bus.Subscribe(ScheduleEventsReplaced, func(e Event) error {
		calls++
		return nil
	})

	require.NoError(t, bus.Publish(NewEvent(context.Background(), ScheduleEventsReplaced, nil)))
	unsubscribe()
	require.NoError(t, bus.Publish(NewEvent(context.Background(), ScheduleEventsReplaced, nil)))

	assert.Equal(t, 1, calls)
}

func TestEventBus_CancelledContext(t *testing.T) {
	bus := NewEventBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := bus.Publish(NewEvent(ctx, ScheduleEventAdded, nil))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestPublishTyped(t *testing.T) {
	// given
	bus := NewEventBus()
	var received ScheduleEventsReplacedData
	SubscribeTyped[ScheduleEventsReplacedData](bus, ScheduleEventsReplaced, func(e EventT[ScheduleEventsReplacedData]) error {
		received = e.Data
		return nil
	})

	// when
	err := PublishTyped(bus, context.Background(), ScheduleEventsReplaced, ScheduleEventsReplacedData{UserId: 3, Count: 7})

	// then
	require.NoError(t, err)
	assert.Equal(t, ScheduleEventsReplacedData{UserId: 3, Count: 7}, received)
}

func TestEventBus_JoinedErrorsAreInspectable(t *testing.T) {
	bus := NewEventBus()
	sentinel := errors.New("subscriber down")
	bus.Subscribe(ScheduleEventAdded, func(e Event) error {
		return sentinel
	})

	err := bus.Publish(NewEvent(context.Background(), ScheduleEventAdded, nil))

	assert.ErrorIs(t, err, sentinel)
}
