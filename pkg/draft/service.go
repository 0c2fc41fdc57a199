package draft

import (
	"context"
	"fmt"
	"time"

	"github.com/habitflow/scheduler/pkg/event"
	"github.com/habitflow/scheduler/pkg/user"
	log "github.com/sirupsen/logrus"
)

// OpenRequest describes where a new draft is placed. Slot is a 12-hour label like "9:30 PM";
// WholeDay takes precedence over Slot.
type OpenRequest struct {
	Date        time.Time
	Slot        string
	WholeDay    bool
	Title       string
	Description string
	Variant     event.Variant
}

type Service interface {
	Open(ctx context.Context, req OpenRequest) (Draft, error)
	Get(ctx context.Context, id string) (Draft, error)
	List(ctx context.Context) ([]Draft, error)
	Update(ctx context.Context, id string, e event.Event) (Draft, error)
	SetCanClose(ctx context.Context, id string, canClose bool) (Draft, error)
	// Commit adds the drafted event to the schedule and closes the draft.
	Commit(ctx context.Context, id string) (event.Event, error)
	Close(ctx context.Context, id string) error
}

type ServiceImpl struct {
	registry *Registry
	events   event.Service
}

func NewService(registry *Registry, events event.Service) *ServiceImpl {
	return &ServiceImpl{registry: registry, events: events}
}

func (s *ServiceImpl) Open(ctx context.Context, req OpenRequest) (Draft, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to get current user: %w", err)
	}
	loc := currentUser.Settings.Location()
	day := time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, loc)

	var e event.Event
	if req.WholeDay {
		e = WholeDayEvent(day)
	} else {
		e, err = SlotEvent(day, req.Slot)
		if err != nil {
			return Draft{}, err
		}
	}
	e.Title = req.Title
	e.Description = req.Description
	if req.Variant != "" {
		variant, err := event.ParseVariant(string(req.Variant))
		if err != nil {
			return Draft{}, err
		}
		e.Variant = variant
	}

	d := s.registry.Open(currentUser.Id, e)
	log.Debugf("opened draft %s for user %d at %s", d.ID, currentUser.Id, e.StartDate.Format(time.RFC3339))
	return d, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id string) (Draft, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.registry.Get(userId, id)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Draft, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.registry.List(userId), nil
}

func (s *ServiceImpl) Update(ctx context.Context, id string, e event.Event) (Draft, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if e.Variant != "" {
		if _, err := event.ParseVariant(string(e.Variant)); err != nil {
			return Draft{}, err
		}
	}
	e.ID = ""
	return s.registry.Update(userId, id, e)
}

func (s *ServiceImpl) SetCanClose(ctx context.Context, id string, canClose bool) (Draft, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.registry.SetCanClose(userId, id, canClose)
}

func (s *ServiceImpl) Commit(ctx context.Context, id string) (event.Event, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to get current user: %w", err)
	}
	d, err := s.registry.Get(userId, id)
	if err != nil {
		return event.Event{}, err
	}

	created, err := s.events.AddEvent(ctx, d.Event)
	if err != nil {
		return event.Event{}, fmt.Errorf("failed to commit draft %s: %w", id, err)
	}
	if err := s.registry.Close(userId, id, true); err != nil {
		log.Warnf("draft %s was committed but could not be closed: %v", id, err)
	}
	return created, nil
}

func (s *ServiceImpl) Close(ctx context.Context, id string) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	return s.registry.Close(userId, id, false)
}
