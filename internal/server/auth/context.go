package auth

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

type ctxKey string

const userKey ctxKey = "currentUser"

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	if u == nil {
		return ctx
	}
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the authenticated user or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

// BearerToken extracts the token from an Authorization header value. Only
// "Bearer <token>" is accepted (scheme compared case-insensitively).
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
