package draft

import (
	"context"
	"testing"
	"time"

	"github.com/habitflow/scheduler/internal/event_bus"
	"github.com/habitflow/scheduler/internal/test_utils"
	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = test_utils.UserContext()

var june4 = time.Date(2025, time.June, 4, 0, 0, 0, 0, time.UTC)

func setupServiceTest(t *testing.T) (*ServiceImpl, *Registry, event.Service) {
	t.Helper()
	events := event.NewService(event.NewRepositoryStub(), event_bus.NewEventBus(), event.Options{})
	registry := NewRegistry(utils.SystemClock{})
	return NewService(registry, events), registry, events
}

func TestService_Open(t *testing.T) {
	t.Run("slot opens a one hour draft", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		d, err := service.Open(ctx, OpenRequest{Date: june4, Slot: "9:30 AM", Title: "Gym"})

		require.NoError(t, err)
		assert.True(t, d.CanClose)
		assert.Equal(t, "Gym", d.Event.Title)
		assert.Equal(t, event.VariantPrimary, d.Event.Variant)
		assert.Equal(t, time.Date(2025, time.June, 4, 9, 30, 0, 0, time.UTC), d.Event.StartDate)
		assert.Equal(t, time.Hour, d.Event.Duration())
	})

	t.Run("whole day", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		d, err := service.Open(ctx, OpenRequest{Date: june4, WholeDay: true, Variant: event.VariantWarning})

		require.NoError(t, err)
		assert.Equal(t, june4, d.Event.StartDate)
		assert.Equal(t, time.Date(2025, time.June, 4, 23, 59, 59, 0, time.UTC), d.Event.EndDate)
		assert.Equal(t, event.VariantWarning, d.Event.Variant)
	})

	t.Run("slot in the time zone of the user", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)
		tokyoUser := test_utils.TestUser
		tokyoUser.Settings.Timezone = "Asia/Tokyo"

		d, err := service.Open(user.WithUser(context.Background(), tokyoUser), OpenRequest{Date: june4, Slot: "8:00 AM"})

		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 3, 23, 0, 0, 0, time.UTC), d.Event.StartDate.UTC())
	})

	t.Run("invalid slot", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		_, err := service.Open(ctx, OpenRequest{Date: june4, Slot: "25:00"})

		assert.ErrorIs(t, err, ErrInvalidSlot)
	})

	t.Run("invalid variant", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		_, err := service.Open(ctx, OpenRequest{Date: june4, WholeDay: true, Variant: "neon"})

		assert.ErrorIs(t, err, event.ErrInvalidEvent)
	})
}

func TestService_Commit(t *testing.T) {
	t.Run("adds the event and closes the draft", func(t *testing.T) {
		// given
		service, registry, events := setupServiceTest(t)
		d, err := service.Open(ctx, OpenRequest{Date: june4, Slot: "7:00 PM"})
		require.NoError(t, err)
		edited := d.Event
		edited.Title = "Dinner"
		_, err = service.Update(ctx, d.ID, edited)
		require.NoError(t, err)

		// when
		created, err := service.Commit(ctx, d.ID)

		// then
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "Dinner", created.Title)
		stored, err := events.GetEvent(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, time.June, 4, 19, 0, 0, 0, time.UTC), stored.StartDate)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("locked draft can still be committed", func(t *testing.T) {
		service, registry, _ := setupServiceTest(t)
		d, err := service.Open(ctx, OpenRequest{Date: june4, Slot: "7:00 PM"})
		require.NoError(t, err)
		_, err = service.SetCanClose(ctx, d.ID, false)
		require.NoError(t, err)

		_, err = service.Commit(ctx, d.ID)

		require.NoError(t, err)
		assert.Equal(t, 0, registry.Len())
	})

	t.Run("unknown draft", func(t *testing.T) {
		service, _, _ := setupServiceTest(t)

		_, err := service.Commit(ctx, "missing")

		assert.ErrorIs(t, err, ErrDraftNotFound)
	})
}

func TestService_Close(t *testing.T) {
	service, _, _ := setupServiceTest(t)
	d, err := service.Open(ctx, OpenRequest{Date: june4, WholeDay: true})
	require.NoError(t, err)
	_, err = service.SetCanClose(ctx, d.ID, false)
	require.NoError(t, err)

	assert.ErrorIs(t, service.Close(ctx, d.ID), ErrDraftLocked)

	_, err = service.SetCanClose(ctx, d.ID, true)
	require.NoError(t, err)
	require.NoError(t, service.Close(ctx, d.ID))
	_, err = service.Get(ctx, d.ID)
	assert.ErrorIs(t, err, ErrDraftNotFound)
}
