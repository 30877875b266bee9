// Package events persists Event records and their append-only attendee sets.
package events

import (
	"context"

	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

// Repository stores events. Listings are ordered by date descending with
// insertion order as the tiebreak; unknown or malformed ids yield
// common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	GetByID(ctx context.Context, id string) (*models.Event, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.Event, error)
	List(ctx context.Context, filter models.EventFilter, limit, offset int) ([]*models.Event, error)
	Count(ctx context.Context, filter models.EventFilter) (int, error)
	// AddAttendee is idempotent and atomic; it returns the event as stored
	// after the call.
	AddAttendee(ctx context.Context, eventID, userID string) (*models.Event, error)
	// ListByUser returns events the user created or attends.
	ListByUser(ctx context.Context, userID string) ([]*models.Event, error)
}
