package event

import (
	"context"
	"fmt"
	"time"

	"github.com/habitflow/scheduler/internal/event_bus"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	AddEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	DeleteEvent(ctx context.Context, id string) error
	GetEvent(ctx context.Context, id string) (Event, error)
	GetEvents(ctx context.Context, from, to time.Time) ([]Event, error)
	GetAllEvents(ctx context.Context) ([]Event, error)
	// SetEvents replaces all events of the current user.
	SetEvents(ctx context.Context, events []Event) ([]Event, error)
}

type Options struct {
	// EndCorrection is applied to events whose end precedes their start.
	EndCorrection  time.Duration
	DefaultVariant Variant
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
	opts     Options
}

func NewService(repo Repository, eventBus *event_bus.EventBus, opts Options) *ServiceImpl {
	if opts.EndCorrection <= 0 {
		opts.EndCorrection = time.Hour
	}
	if opts.DefaultVariant == "" {
		opts.DefaultVariant = VariantPrimary
	}
	return &ServiceImpl{repo: repo, eventBus: eventBus, opts: opts}
}

func (s *ServiceImpl) AddEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	event, err = s.prepare(event)
	if err != nil {
		return Event{}, err
	}

	stored, err := s.repo.StoreEvent(ctx, userId, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	s.publish(ctx, event_bus.ScheduleEventAdded, userId, stored)
	return stored, nil
}

func (s *ServiceImpl) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if event.ID == "" {
		return Event{}, fmt.Errorf("%w: missing id", ErrInvalidEvent)
	}
	event, err = s.prepare(event)
	if err != nil {
		return Event{}, err
	}

	updated, err := s.repo.UpdateEvent(ctx, userId, event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to update event: %w", err)
	}
	s.publish(ctx, event_bus.ScheduleEventUpdated, userId, updated)
	return updated, nil
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	existing, err := s.repo.GetEvent(ctx, userId, id)
	if err != nil {
		return fmt.Errorf("failed to get event: %w", err)
	}
	if err := s.repo.DeleteEvent(ctx, userId, id); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	s.publish(ctx, event_bus.ScheduleEventRemoved, userId, existing)
	return nil
}

func (s *ServiceImpl) GetEvent(ctx context.Context, id string) (Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEvent(ctx, userId, id)
}

func (s *ServiceImpl) GetEvents(ctx context.Context, from, to time.Time) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetEvents(ctx, userId, from, to)
}

func (s *ServiceImpl) GetAllEvents(ctx context.Context) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.GetAllEvents(ctx, userId)
}

func (s *ServiceImpl) SetEvents(ctx context.Context, events []Event) ([]Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	prepared := make([]Event, 0, len(events))
	for _, e := range events {
		p, err := s.prepare(e)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}

	stored := make([]Event, 0, len(prepared))
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		deleted, err := repo.DeleteAllEvents(ctx, userId)
		if err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		log.Debugf("removed %d events of user %d before replacing", deleted, userId)
		for _, e := range prepared {
			storedEvent, err := repo.StoreEvent(ctx, userId, e)
			if err != nil {
				return fmt.Errorf("failed to store event: %w", err)
			}
			stored = append(stored, storedEvent)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to perform transaction: %w", err)
	}

	err = event_bus.PublishTyped(s.eventBus, ctx, event_bus.ScheduleEventsReplaced, event_bus.ScheduleEventsReplacedData{
		UserId: userId,
		Count:  len(stored),
	})
	if err != nil {
		log.Warnf("failed to publish events replaced for user %d: %v", userId, err)
	}
	return stored, nil
}

// prepare validates an incoming event and applies the defaults of the store.
func (s *ServiceImpl) prepare(event Event) (Event, error) {
	if !event.HasValidTimes() {
		return Event{}, fmt.Errorf("%w: start and end are required", ErrInvalidEvent)
	}
	if event.Variant == "" {
		event.Variant = s.opts.DefaultVariant
	} else if _, err := ParseVariant(string(event.Variant)); err != nil {
		return Event{}, err
	}
	if event.EndDate.Before(event.StartDate) {
		log.Debugf("event %q ends before it starts, moving end by %s", event.Title, s.opts.EndCorrection)
	}
	return event.Normalize(s.opts.EndCorrection), nil
}

func (s *ServiceImpl) publish(ctx context.Context, eventType event_bus.EventType, userId int, e Event) {
	err := event_bus.PublishTyped(s.eventBus, ctx, eventType, event_bus.ScheduleEventChanged{
		UserId:    userId,
		EventId:   e.ID,
		StartTime: e.StartDate,
		EndTime:   e.EndDate,
	})
	if err != nil {
		log.Warnf("failed to publish %s for event %s: %v", eventType, e.ID, err)
	}
}
