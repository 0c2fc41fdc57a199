package view

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/habitflow/scheduler/internal/event_bus"
	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/layout"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

// Service builds calendar views for the current user. A zero date means today.
type Service interface {
	Day(ctx context.Context, date time.Time) (DayView, error)
	Week(ctx context.Context, date time.Time) (WeekView, error)
	Month(ctx context.Context, date time.Time) (MonthView, error)
}

const defaultCacheDays = 62

type Options struct {
	WeekMaxEvents  int
	MonthMaxEvents int
	// CacheDays is how many laid out days are kept per user.
	CacheDays int
}

// dayCache holds the laid out days of one user, oldest first in order.
// generation is bumped on every change so that a layout computed from older
// events is not stored.
type dayCache struct {
	generation uint64
	days       map[string][]layout.Placement
	order      []string
}

type ServiceImpl struct {
	events event.Service
	engine *layout.Engine
	clock  utils.Clock
	opts   Options

	mu    sync.RWMutex
	cache map[int]*dayCache
}

func NewService(events event.Service, engine *layout.Engine, eventBus *event_bus.EventBus, clock utils.Clock, opts Options) *ServiceImpl {
	s := &ServiceImpl{
		events: events,
		engine: engine,
		clock:  clock,
		opts:   opts,
		cache:  make(map[int]*dayCache),
	}
	if s.opts.CacheDays <= 0 {
		s.opts.CacheDays = defaultCacheDays
	}

	onEventChanged := func(e event_bus.EventT[event_bus.ScheduleEventChanged]) error {
		s.invalidate(e.Data.UserId)
		return nil
	}
	event_bus.SubscribeTyped(eventBus, event_bus.ScheduleEventAdded, onEventChanged)
	event_bus.SubscribeTyped(eventBus, event_bus.ScheduleEventUpdated, onEventChanged)
	event_bus.SubscribeTyped(eventBus, event_bus.ScheduleEventRemoved, onEventChanged)
	event_bus.SubscribeTyped(eventBus, event_bus.ScheduleEventsReplaced,
		func(e event_bus.EventT[event_bus.ScheduleEventsReplacedData]) error {
			s.invalidate(e.Data.UserId)
			return nil
		})
	event_bus.SubscribeTyped(eventBus, event_bus.UserSettingsUpdated,
		func(e event_bus.EventT[event_bus.UserSettingsChanged]) error {
			s.invalidate(e.Data.UserId)
			return nil
		})

	return s
}

func (s *ServiceImpl) Day(ctx context.Context, date time.Time) (DayView, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return DayView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	day := s.resolveDate(date, currentUser.Settings.Location())

	placements, err := s.dayPlacements(ctx, currentUser.Id, day)
	if err != nil {
		return DayView{}, err
	}
	view := DayView{
		Date:       day,
		Title:      dayTitle(day),
		Placements: placements,
	}
	if day.Equal(utils.Today(s.clock, day.Location())) {
		offset := s.nowOffset(day.Location())
		view.NowOffset = &offset
	}
	return view, nil
}

// nowOffset is the vertical position of the current time on the day grid.
func (s *ServiceImpl) nowOffset(loc *time.Location) float64 {
	now := s.clock.Now().In(loc)
	return (float64(now.Hour()) + float64(now.Minute())/60) * s.engine.Config().HourHeight
}

func (s *ServiceImpl) Week(ctx context.Context, date time.Time) (WeekView, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return WeekView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	day := s.resolveDate(date, currentUser.Settings.Location())
	weekStartsOn := currentUser.Settings.WeekStartsOn

	view := WeekView{
		Start:      StartOfWeek(day, weekStartsOn),
		WeekNumber: WeekNumber(day),
		Headers:    WeekdayHeaders(weekStartsOn),
		Days:       make([]WeekDay, 0, daysPerWeek),
	}
	for _, date := range DaysInWeek(day, weekStartsOn) {
		placements, err := s.dayPlacements(ctx, currentUser.Id, date)
		if err != nil {
			return WeekView{}, err
		}
		view.Days = append(view.Days, buildWeekDay(date, placements, s.opts.WeekMaxEvents))
	}
	return view, nil
}

func (s *ServiceImpl) Month(ctx context.Context, date time.Time) (MonthView, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to get current user: %w", err)
	}
	loc := currentUser.Settings.Location()
	day := s.resolveDate(date, loc)
	first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, loc)

	events, err := s.events.GetEvents(ctx, first, first.AddDate(0, 1, 0))
	if err != nil {
		return MonthView{}, fmt.Errorf("failed to get events of %s: %w", first.Format("2006-01"), err)
	}
	return buildMonth(first, currentUser.Settings.WeekStartsOn, inLocation(events, loc), s.opts.MonthMaxEvents), nil
}

func (s *ServiceImpl) resolveDate(date time.Time, loc *time.Location) time.Time {
	if date.IsZero() {
		return utils.Today(s.clock, loc)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
}

// dayPlacements returns the laid out events of the day starting at midnight day.
func (s *ServiceImpl) dayPlacements(ctx context.Context, userId int, day time.Time) ([]layout.Placement, error) {
	key := day.Format(time.RFC3339) + " " + day.Location().String()

	s.mu.RLock()
	var generation uint64
	if c := s.cache[userId]; c != nil {
		if cached, ok := c.days[key]; ok {
			s.mu.RUnlock()
			return slices.Clone(cached), nil
		}
		generation = c.generation
	}
	s.mu.RUnlock()

	events, err := s.events.GetEvents(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to get events of %s: %w", day.Format("2006-01-02"), err)
	}
	dayEvents := event.ForDay(inLocation(events, day.Location()), day)
	placements := s.engine.LayoutDay(dayEvents)

	s.store(userId, generation, key, placements)
	return slices.Clone(placements), nil
}

func (s *ServiceImpl) store(userId int, generation uint64, key string, placements []layout.Placement) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cache[userId]
	if c == nil {
		c = &dayCache{}
		s.cache[userId] = c
	}
	if c.generation != generation {
		log.Debugf("events of user %d changed while laying out %s, not caching", userId, key)
		return
	}
	if c.days == nil {
		c.days = make(map[string][]layout.Placement)
	}
	if _, ok := c.days[key]; !ok {
		c.order = append(c.order, key)
	}
	c.days[key] = placements
	for len(c.order) > s.opts.CacheDays {
		delete(c.days, c.order[0])
		c.order = c.order[1:]
	}
}

func (s *ServiceImpl) invalidate(userId int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cache[userId]
	if c == nil {
		c = &dayCache{}
		s.cache[userId] = c
	}
	if len(c.days) > 0 {
		log.Debugf("dropping %d cached day layouts of user %d", len(c.days), userId)
	}
	c.generation++
	c.days = nil
	c.order = nil
}
