// Package comments persists immutable comments attached to events.
package comments

import (
	"context"

	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

// Repository stores comments. Listings are ordered by creation time with
// insertion order as the tiebreak.
type Repository interface {
	// Create returns common.ErrorNotFound when the event or author does not exist
	// (where the engine can tell) or when an id is malformed.
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListByEvent(ctx context.Context, eventID string) ([]*models.Comment, error)
	ListByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error)
	// ListByEvents groups comments of several events in one round trip.
	ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*models.Comment, error)
}
