package comments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps comments in insertion order.
type MemoryRepository struct {
	mu   sync.RWMutex
	list []models.Comment
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Create(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	comment.ID = uuid.NewString()
	r.list = append(r.list, *comment)
	return comment, nil
}

func (r *MemoryRepository) ListByEvent(_ context.Context, eventID string) ([]*models.Comment, error) {
	return r.filter(func(c *models.Comment) bool { return c.EventID == eventID }), nil
}

func (r *MemoryRepository) ListByAuthor(_ context.Context, authorID string) ([]*models.Comment, error) {
	return r.filter(func(c *models.Comment) bool { return c.AuthorID == authorID }), nil
}

func (r *MemoryRepository) ListByEvents(_ context.Context, eventIDs []string) (map[string][]*models.Comment, error) {
	want := make(map[string]struct{}, len(eventIDs))
	for _, id := range eventIDs {
		want[id] = struct{}{}
	}

	grouped := make(map[string][]*models.Comment)
	for _, c := range r.filter(func(c *models.Comment) bool {
		_, ok := want[c.EventID]
		return ok
	}) {
		grouped[c.EventID] = append(grouped[c.EventID], c)
	}
	return grouped, nil
}

func (r *MemoryRepository) filter(keep func(*models.Comment) bool) []*models.Comment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Comment
	for i := range r.list {
		if keep(&r.list[i]) {
			c := r.list[i]
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
