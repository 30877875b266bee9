package graph

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

// thunk is the deferred value graphql-go resolves after all sibling fields
// have run, which lets the loader fetch every queued id at once.
type thunk = func() (interface{}, error)

type userSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
}

type eventSource interface {
	GetByIDs(ctx context.Context, ids []string) ([]*models.Event, error)
}

type commentSource interface {
	ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*models.Comment, error)
}

// Loader batches relationship lookups for a single request and memoizes
// the results. It must not outlive the request.
type Loader struct {
	ctx      context.Context
	users    userSource
	events   eventSource
	comments commentSource
	logger   logging.Logger

	mu sync.Mutex

	userQueue []string
	userCache map[string]*models.User

	eventQueue []string
	eventCache map[string]*models.Event

	commentQueue []string
	commentCache map[string][]*models.Comment

	batches int
}

func newLoader(ctx context.Context, users userSource, events eventSource, comments commentSource, logger logging.Logger) *Loader {
	return &Loader{
		ctx:          ctx,
		users:        users,
		events:       events,
		comments:     comments,
		logger:       logger,
		userCache:    make(map[string]*models.User),
		eventCache:   make(map[string]*models.Event),
		commentCache: make(map[string][]*models.Comment),
	}
}

type loaderKey struct{}

func withLoader(ctx context.Context, l *Loader) context.Context {
	return context.WithValue(ctx, loaderKey{}, l)
}

func loaderFrom(ctx context.Context) *Loader {
	l, _ := ctx.Value(loaderKey{}).(*Loader)
	return l
}

// Batches reports how many store round trips the loader made.
func (l *Loader) Batches() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.batches
}

// Prime stores already loaded records so later lookups skip the store.
func (l *Loader) Prime(users []*models.User, events []*models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, u := range users {
		l.userCache[u.ID] = u
	}
	for _, e := range events {
		l.eventCache[e.ID] = e
	}
}

// User resolves to the user with id or nil.
func (l *Loader) User(id string) thunk {
	l.queueUsers([]string{id})
	return func() (interface{}, error) {
		if err := l.flushUsers(); err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		if u, ok := l.userCache[id]; ok {
			return u, nil
		}
		return nil, nil
	}
}

// Users resolves ids in the given order, skipping unknown ones.
func (l *Loader) Users(ids []string) thunk {
	l.queueUsers(ids)
	return func() (interface{}, error) {
		if err := l.flushUsers(); err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		out := make([]*models.User, 0, len(ids))
		for _, id := range ids {
			if u, ok := l.userCache[id]; ok {
				out = append(out, u)
			}
		}
		return out, nil
	}
}

// Event resolves to the event with id or nil.
func (l *Loader) Event(id string) thunk {
	l.mu.Lock()
	if _, ok := l.eventCache[id]; !ok {
		l.eventQueue = append(l.eventQueue, id)
	}
	l.mu.Unlock()

	return func() (interface{}, error) {
		if err := l.flushEvents(); err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		if e, ok := l.eventCache[id]; ok {
			return e, nil
		}
		return nil, nil
	}
}

// Comments resolves to the event's comments, oldest first.
func (l *Loader) Comments(eventID string) thunk {
	l.mu.Lock()
	if _, ok := l.commentCache[eventID]; !ok {
		l.commentQueue = append(l.commentQueue, eventID)
	}
	l.mu.Unlock()

	return func() (interface{}, error) {
		if err := l.flushComments(); err != nil {
			return nil, err
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		list := l.commentCache[eventID]
		if list == nil {
			list = []*models.Comment{}
		}
		return list, nil
	}
}

func (l *Loader) queueUsers(ids []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, id := range ids {
		if _, ok := l.userCache[id]; !ok {
			l.userQueue = append(l.userQueue, id)
		}
	}
}

func (l *Loader) flushUsers() error {
	l.mu.Lock()
	ids := pending(l.userQueue, func(id string) bool { _, ok := l.userCache[id]; return ok })
	l.userQueue = nil
	l.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	found, err := l.users.GetByIDs(l.ctx, ids)
	if err != nil {
		l.logger.Error(l.ctx, "batch load users", "count", len(ids), "error", err)
		return errInternal
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches++
	for _, u := range found {
		l.userCache[u.ID] = u
	}
	return nil
}

func (l *Loader) flushEvents() error {
	l.mu.Lock()
	ids := pending(l.eventQueue, func(id string) bool { _, ok := l.eventCache[id]; return ok })
	l.eventQueue = nil
	l.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	found, err := l.events.GetByIDs(l.ctx, ids)
	if err != nil {
		l.logger.Error(l.ctx, "batch load events", "count", len(ids), "error", err)
		return errInternal
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches++
	for _, e := range found {
		l.eventCache[e.ID] = e
	}
	return nil
}

func (l *Loader) flushComments() error {
	l.mu.Lock()
	ids := pending(l.commentQueue, func(id string) bool { _, ok := l.commentCache[id]; return ok })
	l.commentQueue = nil
	l.mu.Unlock()
	if len(ids) == 0 {
		return nil
	}

	grouped, err := l.comments.ListByEvents(l.ctx, ids)
	if err != nil {
		l.logger.Error(l.ctx, "batch load comments", "count", len(ids), "error", err)
		return errInternal
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.batches++
	for _, id := range ids {
		list := grouped[id]
		if list == nil {
			list = []*models.Comment{}
		}
		l.commentCache[id] = list
	}
	return nil
}

// pending returns the distinct queued ids not yet cached, in queue order.
func pending(queue []string, cached func(string) bool) []string {
	seen := make(map[string]struct{}, len(queue))
	out := make([]string, 0, len(queue))
	for _, id := range queue {
		if _, dup := seen[id]; dup || cached(id) {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
