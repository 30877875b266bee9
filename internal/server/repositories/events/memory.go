package events

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps events in process memory. All mutations happen
// under one lock, so joins can never lose an attendee.
type MemoryRepository struct {
	mu    sync.RWMutex
	byID  map[string]*models.Event
	order []string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*models.Event)}
}

func (r *MemoryRepository) Create(_ context.Context, event *models.Event) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	event.ID = uuid.NewString()
	event.Attendees = []string{}

	r.byID[event.ID] = clone(event)
	r.order = append(r.order, event.ID)
	return event, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(e), nil
}

func (r *MemoryRepository) GetByIDs(_ context.Context, ids []string) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Event
	for _, id := range ids {
		if e, ok := r.byID[id]; ok {
			result = append(result, clone(e))
		}
	}
	return result, nil
}

func (r *MemoryRepository) List(_ context.Context, filter models.EventFilter, limit, offset int) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.sorted(filter.Matches)
	if offset >= len(matched) {
		return nil, nil
	}
	end := min(offset+limit, len(matched))
	return matched[offset:end], nil
}

func (r *MemoryRepository) Count(_ context.Context, filter models.EventFilter) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, e := range r.byID {
		if filter.Matches(e) {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) AddAttendee(_ context.Context, eventID, userID string) (*models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byID[eventID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if !e.HasAttendee(userID) {
		e.Attendees = append(e.Attendees, userID)
	}
	return clone(e), nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string) ([]*models.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sorted(func(e *models.Event) bool {
		return e.CreatedBy == userID || e.HasAttendee(userID)
	}), nil
}

// sorted returns copies of the matching events, date descending, with
// insertion order kept for equal dates.
func (r *MemoryRepository) sorted(keep func(*models.Event) bool) []*models.Event {
	var out []*models.Event
	for _, id := range r.order {
		if e := r.byID[id]; keep(e) {
			out = append(out, clone(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

func clone(e *models.Event) *models.Event {
	c := *e
	c.Attendees = slices.Clone(e.Attendees)
	if c.Attendees == nil {
		c.Attendees = []string{}
	}
	if e.Description != nil {
		d := *e.Description
		c.Description = &d
	}
	return &c
}
