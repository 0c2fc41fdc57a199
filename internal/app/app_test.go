package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/habitflow/scheduler/internal/config"
	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/user"
	"github.com/habitflow/scheduler/pkg/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) (*mux.Router, user.User) {
	t.Helper()
	userRepo := user.NewStubUserRepository()
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.June, 4, 12, 0, 0, 0, time.UTC)}
	deps, err := newDependencies(userRepo, event.NewRepositoryStub(), clock, config.Defaults())
	require.NoError(t, err)

	created, err := deps.UserService.CreateUser(context.Background(), user.User{Username: "alice"})
	require.NoError(t, err)

	r := mux.NewRouter()
	SetupMiddleware(r, deps)
	RegisterRoutes(r, deps)
	return r, created
}

func TestRouter_UnknownUserIsForbidden(t *testing.T) {
	r, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodGet, "/api/view/day", nil)
	req.Header.Set("X-User-Id", "nobody")
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_MissingUserIsForbidden(t *testing.T) {
	r, _ := setupRouter(t)
	rr := httptest.NewRecorder()

	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/view/day", nil))

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestRouter_CreateEventAndViewDay(t *testing.T) {
	// given
	r, alice := setupRouter(t)
	body, err := json.Marshal(event.EventDTO{
		Title:     "Focus",
		StartDate: time.Date(2025, time.June, 4, 9, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.June, 4, 10, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	// when
	req := httptest.NewRequest(http.MethodPost, "/api/event", bytes.NewReader(body))
	req.Header.Set("X-User-Id", alice.Uid)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/view/day", nil)
	req.Header.Set("X-User-Id", alice.Uid)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var day view.DayViewDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&day))
	assert.Equal(t, "2025-06-04", day.Date)
	require.Len(t, day.Events, 1)
	assert.Equal(t, "Focus", day.Events[0].Event.Title)
	assert.InDelta(t, 96.0, day.Events[0].Box.Height, 1e-9)
	assert.InDelta(t, 95.0, day.Events[0].Box.Width, 1e-9)
	require.NotNil(t, day.NowOffset)
	assert.InDelta(t, 768.0, *day.NowOffset, 1e-9)

	req = httptest.NewRequest(http.MethodGet, "/api/export/csv", nil)
	req.Header.Set("X-User-Id", alice.Uid)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), ",Focus,,primary,04/06/2025 09:00,04/06/2025 10:30,01:30:00")
}

func TestRouter_DraftCommitShowsInWeek(t *testing.T) {
	// given
	r, alice := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/draft", bytes.NewBufferString(`{"date":"2025-06-05","slot":"2:00 PM","title":"Call"}`))
	req.Header.Set("X-User-Id", alice.Uid)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	var opened struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&opened))

	// when
	req = httptest.NewRequest(http.MethodPost, "/api/draft/"+opened.ID+"/commit", nil)
	req.Header.Set("X-User-Id", alice.Uid)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/view/week?date=2025-06-05", nil)
	req.Header.Set("X-User-Id", alice.Uid)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var week view.WeekViewDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&week))
	assert.Equal(t, "2025-06-01", week.Start)
	require.Len(t, week.Days, 7)
	require.Len(t, week.Days[4].Events, 1)
	assert.Equal(t, "Call", week.Days[4].Events[0].Event.Title)
	assert.InDelta(t, 14*64.0, week.Days[4].Events[0].Box.Top, 1e-9)
}

func TestNewDependencies_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Event.DefaultVariant = "rainbow"

	_, err := newDependencies(user.NewStubUserRepository(), event.NewRepositoryStub(), utils.SystemClock{}, cfg)

	assert.Error(t, err)
}
