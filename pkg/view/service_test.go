package view

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/habitflow/scheduler/internal/event_bus"
	"github.com/habitflow/scheduler/internal/test_utils"
	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/layout"
	"github.com/habitflow/scheduler/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = test_utils.UserContext()

// countingEvents counts range queries reaching the event service.
type countingEvents struct {
	event.Service
	calls atomic.Int32
}

func (c *countingEvents) GetEvents(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	c.calls.Add(1)
	return c.Service.GetEvents(ctx, from, to)
}

// writingEvents runs afterRead once, right after the first range query has been answered.
type writingEvents struct {
	event.Service
	afterRead func()
}

func (w *writingEvents) GetEvents(ctx context.Context, from, to time.Time) ([]event.Event, error) {
	events, err := w.Service.GetEvents(ctx, from, to)
	if w.afterRead != nil {
		afterRead := w.afterRead
		w.afterRead = nil
		afterRead()
	}
	return events, err
}

func setupServiceTest(t *testing.T) (*ServiceImpl, *countingEvents) {
	return setupServiceTestWithOptions(t, Options{WeekMaxEvents: 10, MonthMaxEvents: 1})
}

func setupServiceTestWithOptions(t *testing.T, opts Options) (*ServiceImpl, *countingEvents) {
	t.Helper()
	bus := event_bus.NewEventBus()
	events := &countingEvents{Service: event.NewService(event.NewRepositoryStub(), bus, event.Options{})}
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.June, 4, 10, 0, 0, 0, time.UTC)}
	service := NewService(events, layout.NewEngine(layout.DefaultConfig()), bus, clock, opts)
	return service, events
}

func addEvent(t *testing.T, events event.Service, id string, start, end time.Time) {
	t.Helper()
	_, err := events.AddEvent(ctx, event.Event{ID: id, Title: id, StartDate: start, EndDate: end})
	require.NoError(t, err)
}

func june(day, hour, minute int) time.Time {
	return time.Date(2025, time.June, day, hour, minute, 0, 0, time.UTC)
}

func TestService_Day(t *testing.T) {
	t.Run("today with overlapping events", func(t *testing.T) {
		// given
		service, events := setupServiceTest(t)
		addEvent(t, events, "first", june(4, 9, 0), june(4, 10, 0))
		addEvent(t, events, "second", june(4, 9, 30), june(4, 10, 30))
		addEvent(t, events, "third", june(4, 11, 0), june(4, 12, 0))
		addEvent(t, events, "tomorrow", june(5, 9, 0), june(5, 10, 0))

		// when
		view, err := service.Day(ctx, time.Time{})

		// then
		require.NoError(t, err)
		assert.Equal(t, june(4, 0, 0), view.Date)
		assert.Equal(t, "Wednesday, June 4, 2025", view.Title)
		require.Len(t, view.Placements, 3)
		assert.Equal(t, "first", view.Placements[0].Event.ID)
		assert.InDelta(t, 47.5, view.Placements[0].Box.Width, 1e-9)
		assert.InDelta(t, 48.5, view.Placements[1].Box.Left, 1e-9)
		assert.InDelta(t, 95.0, view.Placements[2].Box.Width, 1e-9)
		require.NotNil(t, view.NowOffset)
		assert.InDelta(t, 640.0, *view.NowOffset, 1e-9)
	})

	t.Run("other days have no now offset", func(t *testing.T) {
		service, _ := setupServiceTest(t)

		view, err := service.Day(ctx, june(3, 0, 0))

		require.NoError(t, err)
		assert.Nil(t, view.NowOffset)
	})

	t.Run("event spanning midnight appears on both days", func(t *testing.T) {
		service, events := setupServiceTest(t)
		addEvent(t, events, "night", june(4, 23, 30), june(5, 0, 30))

		today, err := service.Day(ctx, june(4, 0, 0))
		require.NoError(t, err)
		tomorrow, err := service.Day(ctx, june(5, 0, 0))
		require.NoError(t, err)

		require.Len(t, today.Placements, 1)
		assert.InDelta(t, 32.0, today.Placements[0].Box.Height, 1e-9)
		require.Len(t, tomorrow.Placements, 1)
		assert.Equal(t, "night", tomorrow.Placements[0].Event.ID)
	})

	t.Run("uses the time zone of the user", func(t *testing.T) {
		service, events := setupServiceTest(t)
		addEvent(t, events, "late", june(4, 22, 30), june(4, 23, 30))
		warsawUser := test_utils.TestUser
		warsawUser.Settings.Timezone = "Europe/Warsaw"
		warsawCtx := user.WithUser(context.Background(), warsawUser)

		view, err := service.Day(warsawCtx, time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC))

		require.NoError(t, err)
		require.Len(t, view.Placements, 1)
		assert.InDelta(t, 0.5*64, view.Placements[0].Box.Top, 1e-9)
		assert.Equal(t, "Europe/Warsaw", view.Date.Location().String())
	})

	t.Run("requires user", func(t *testing.T) {
		service, _ := setupServiceTest(t)

		_, err := service.Day(context.Background(), time.Time{})

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}

func TestService_DayCache(t *testing.T) {
	// given
	service, events := setupServiceTest(t)
	addEvent(t, events, "first", june(4, 9, 0), june(4, 10, 0))
	_, err := service.Day(ctx, time.Time{})
	require.NoError(t, err)

	// when
	view, err := service.Day(ctx, time.Time{})

	// then
	require.NoError(t, err)
	assert.Len(t, view.Placements, 1)
	assert.Equal(t, int32(1), events.calls.Load())

	// when
	addEvent(t, events, "second", june(4, 9, 30), june(4, 10, 30))
	view, err = service.Day(ctx, time.Time{})

	// then
	require.NoError(t, err)
	assert.Len(t, view.Placements, 2)
	assert.Equal(t, int32(2), events.calls.Load())
}

func TestService_DayCacheSkipsLayoutOfChangedEvents(t *testing.T) {
	// given
	bus := event_bus.NewEventBus()
	store := event.NewService(event.NewRepositoryStub(), bus, event.Options{})
	events := &writingEvents{Service: store}
	events.afterRead = func() {
		addEvent(t, store, "late", june(4, 13, 0), june(4, 14, 0))
	}
	clock := &utils.MockClock{FixedNow: june(4, 10, 0)}
	service := NewService(events, layout.NewEngine(layout.DefaultConfig()), bus, clock, Options{})

	// when
	first, err := service.Day(ctx, time.Time{})
	require.NoError(t, err)
	second, err := service.Day(ctx, time.Time{})

	// then
	require.NoError(t, err)
	assert.Empty(t, first.Placements)
	require.Len(t, second.Placements, 1)
	assert.Equal(t, "late", second.Placements[0].Event.ID)
}

func TestService_DayCacheIsBounded(t *testing.T) {
	// given
	service, events := setupServiceTestWithOptions(t, Options{CacheDays: 2})
	for _, day := range []int{1, 2, 3} {
		_, err := service.Day(ctx, june(day, 0, 0))
		require.NoError(t, err)
	}
	require.Equal(t, int32(3), events.calls.Load())

	// when
	_, err := service.Day(ctx, june(3, 0, 0))
	require.NoError(t, err)
	_, err = service.Day(ctx, june(1, 0, 0))
	require.NoError(t, err)

	// then
	assert.Equal(t, int32(4), events.calls.Load())
	service.mu.RLock()
	defer service.mu.RUnlock()
	assert.Len(t, service.cache[test_utils.TestUser.Id].days, 2)
}

func TestService_Week(t *testing.T) {
	t.Run("columns from the week start of the user", func(t *testing.T) {
		// given
		service, events := setupServiceTest(t)
		addEvent(t, events, "monday", june(2, 8, 0), june(2, 9, 0))
		addEvent(t, events, "sunday", june(8, 8, 0), june(8, 9, 0))
		addEvent(t, events, "next-week", june(9, 8, 0), june(9, 9, 0))

		// when
		view, err := service.Week(ctx, june(4, 0, 0))

		// then
		require.NoError(t, err)
		assert.Equal(t, june(2, 0, 0), view.Start)
		assert.Equal(t, 23, view.WeekNumber)
		assert.Equal(t, "Mon", view.Headers[0])
		require.Len(t, view.Days, 7)
		require.Len(t, view.Days[0].Placements, 1)
		assert.Equal(t, "monday", view.Days[0].Placements[0].Event.ID)
		require.Len(t, view.Days[6].Placements, 1)
		assert.Equal(t, "sunday", view.Days[6].Placements[0].Event.ID)
	})

	t.Run("busy day shows more count", func(t *testing.T) {
		// given
		service, events := setupServiceTest(t)
		for i := 0; i < 12; i++ {
			start := june(3, 8+i, 0)
			addEvent(t, events, fmt.Sprintf("e%02d", i), start, start.Add(90*time.Minute))
		}

		// when
		view, err := service.Week(ctx, june(3, 0, 0))

		// then
		require.NoError(t, err)
		busy := view.Days[1]
		assert.Equal(t, june(3, 0, 0), busy.Date)
		require.Len(t, busy.Placements, 9)
		assert.Equal(t, 3, busy.MoreCount)
		// the chain covers all twelve events, so boxes keep the width of the full group
		assert.InDelta(t, 95.0/12, busy.Placements[0].Box.Width, 1e-9)
	})
}

func TestService_Month(t *testing.T) {
	// given
	service, events := setupServiceTest(t)
	addEvent(t, events, "a", june(10, 8, 0), june(10, 9, 0))
	addEvent(t, events, "b", june(10, 12, 0), june(10, 13, 0))
	addEvent(t, events, "c", june(30, 12, 0), june(30, 13, 0))

	// when
	view, err := service.Month(ctx, time.Time{})

	// then
	require.NoError(t, err)
	assert.Equal(t, 2025, view.Year)
	assert.Equal(t, time.June, view.Month)
	assert.Equal(t, "June 2025", view.Title)
	require.Len(t, view.Days, 6+30)

	placeholder := view.Days[0]
	assert.False(t, placeholder.InMonth)
	assert.Equal(t, 26, placeholder.Date.Day())
	assert.Empty(t, placeholder.Events)

	tenth := view.Days[6+9]
	assert.True(t, tenth.InMonth)
	assert.Equal(t, 10, tenth.Date.Day())
	require.Len(t, tenth.Events, 1)
	assert.Equal(t, "a", tenth.Events[0].ID)
	assert.Equal(t, 1, tenth.MoreCount)

	last := view.Days[len(view.Days)-1]
	require.Len(t, last.Events, 1)
	assert.Equal(t, 0, last.MoreCount)
}
