// Package users is the credential store: it persists User records and
// enforces email uniqueness atomically at the storage layer.
package users

import (
	"context"

	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

// Repository stores users. Create returns common.ErrorConflict for a taken
// email; lookups return common.ErrorNotFound for unknown or malformed ids.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs returns the users that exist, in no particular order.
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
}
