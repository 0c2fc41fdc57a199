package event

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu             sync.RWMutex
	items          map[string]Event // id -> event
	userIds        map[string]int   // id -> userId
	nextId         int
	transactionErr error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		items:   make(map[string]Event),
		userIds: make(map[string]int),
		nextId:  1,
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	originalItems := maps.Clone(r.items)
	originalUserIds := maps.Clone(r.userIds)
	originalNextId := r.nextId
	r.mu.Unlock()

	err := fn(r)

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil || r.transactionErr != nil {
		r.items = originalItems
		r.userIds = originalUserIds
		r.nextId = originalNextId
		if err != nil {
			return err
		}
		return r.transactionErr
	}
	return nil
}

func (r *RepositoryStub) StoreEvent(ctx context.Context, userId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.ID == "" {
		event.ID = fmt.Sprintf("event-%d", r.nextId)
		r.nextId++
	}
	if _, exists := r.items[event.ID]; exists {
		return Event{}, fmt.Errorf("event %s already exists", event.ID)
	}
	r.items[event.ID] = event
	r.userIds[event.ID] = userId
	return event, nil
}

func (r *RepositoryStub) GetEvent(ctx context.Context, userId int, id string) (Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, exists := r.items[id]
	if !exists || r.userIds[id] != userId {
		return Event{}, ErrEventNotFound
	}
	return e, nil
}

func (r *RepositoryStub) GetEvents(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for id, e := range r.items {
		if r.userIds[id] == userId && !e.StartDate.After(to) && !e.EndDate.Before(from) {
			result = append(result, e)
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *RepositoryStub) GetAllEvents(ctx context.Context, userId int) ([]Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Event, 0)
	for id, e := range r.items {
		if r.userIds[id] == userId {
			result = append(result, e)
		}
	}
	sortByStart(result)
	return result, nil
}

func (r *RepositoryStub) UpdateEvent(ctx context.Context, userId int, event Event) (Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[event.ID]
	if !exists || r.userIds[event.ID] != userId {
		return Event{}, ErrEventNotFound
	}
	r.items[event.ID] = event
	return event, nil
}

func (r *RepositoryStub) DeleteEvent(ctx context.Context, userId int, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.items[id]
	if !exists || r.userIds[id] != userId {
		return ErrEventNotFound
	}
	delete(r.items, id)
	delete(r.userIds, id)
	return nil
}

func (r *RepositoryStub) DeleteAllEvents(ctx context.Context, userId int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, owner := range r.userIds {
		if owner == userId {
			delete(r.items, id)
			delete(r.userIds, id)
			deleted++
		}
	}
	return deleted, nil
}

// SetTransactionError makes the next transaction roll back with err.
func (r *RepositoryStub) SetTransactionError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transactionErr = err
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = make(map[string]Event)
	r.userIds = make(map[string]int)
	r.nextId = 1
	r.transactionErr = nil
}

func sortByStart(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
