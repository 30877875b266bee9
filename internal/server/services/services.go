// Package services contains server-side business logic: validation,
// authorization and the calls into the repositories. Resolvers stay thin and
// only translate between GraphQL arguments and these methods.
package services

import (
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

// Clock returns the current time; tests substitute a deterministic one.
type Clock func() time.Time

// errNotAuthenticated is returned by every mutation that needs a session.
var errNotAuthenticated = common.NewError(common.ErrorUnauthorized, "not authenticated")

// requireUser rejects anonymous callers.
func requireUser(u *models.User) error {
	if u == nil || u.ID == "" {
		return errNotAuthenticated
	}
	return nil
}

// stamp returns the clock's time in UTC at millisecond precision, the
// precision every engine and the wire format can hold.
func stamp(now Clock) time.Time {
	return now().UTC().Truncate(time.Millisecond)
}
