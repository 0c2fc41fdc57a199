package draft

import (
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/habitflow/scheduler/internal/utils"
	"github.com/habitflow/scheduler/pkg/event"
)

type entry struct {
	userId int
	draft  Draft
}

// Registry keeps the open drafts of all users. A draft exists from Open until Close.
type Registry struct {
	mu     sync.RWMutex
	drafts map[string]entry
	clock  utils.Clock
}

func NewRegistry(clock utils.Clock) *Registry {
	return &Registry{
		drafts: make(map[string]entry),
		clock:  clock,
	}
}

// Open registers a new closable draft for e.
func (r *Registry) Open(userId int, e event.Event) Draft {
	r.mu.Lock()
	defer r.mu.Unlock()

	d := Draft{
		ID:       uuid.NewString(),
		Event:    e,
		CanClose: true,
		OpenedAt: r.clock.Now(),
	}
	r.drafts[d.ID] = entry{userId: userId, draft: d}
	return d
}

func (r *Registry) Get(userId int, id string) (Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.drafts[id]
	if !ok || e.userId != userId {
		return Draft{}, ErrDraftNotFound
	}
	return e.draft, nil
}

// List returns the drafts of a user, oldest first.
func (r *Registry) List(userId int) []Draft {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Draft, 0)
	for _, e := range r.drafts {
		if e.userId == userId {
			result = append(result, e.draft)
		}
	}
	sortByOpenedAt(result)
	return result
}

func (r *Registry) Update(userId int, id string, e event.Event) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.drafts[id]
	if !ok || existing.userId != userId {
		return Draft{}, ErrDraftNotFound
	}
	existing.draft.Event = e
	r.drafts[id] = existing
	return existing.draft, nil
}

func (r *Registry) SetCanClose(userId int, id string, canClose bool) (Draft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.drafts[id]
	if !ok || existing.userId != userId {
		return Draft{}, ErrDraftNotFound
	}
	existing.draft.CanClose = canClose
	r.drafts[id] = existing
	return existing.draft, nil
}

// Close discards a draft. Locked drafts are kept unless force is set.
func (r *Registry) Close(userId int, id string, force bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.drafts[id]
	if !ok || existing.userId != userId {
		return ErrDraftNotFound
	}
	if !existing.draft.CanClose && !force {
		return ErrDraftLocked
	}
	delete(r.drafts, id)
	return nil
}

// Len returns the number of open drafts across all users.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.drafts)
}

func sortByOpenedAt(drafts []Draft) {
	slices.SortFunc(drafts, func(a, b Draft) int {
		if c := a.OpenedAt.Compare(b.OpenedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
