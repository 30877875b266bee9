package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/auth"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

const (
	headerRequestID     = common.RequestIDHeaderName
	headerAuthorization = common.AuthorizationHeaderName
	headerCache         = "X-Cache"
)

// Authenticator resolves a bearer token to a user; nil means anonymous.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) *models.User
}

// requestID reuses the caller's X-Request-ID or generates one, and stores it
// in the request context for logging.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(headerRequestID, id)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		s.metrics.ObserveRequest(c.Request.Method, route, status)
		s.logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration", time.Since(started),
			"client_ip", c.ClientIP(),
		)
	}
}

// authenticate attaches the current user to the request context. A missing
// or bad token leaves the request anonymous; it is never rejected here.
func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(headerAuthorization)
		if header == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		token, ok := auth.BearerToken(header)
		if !ok {
			s.logger.Debug(ctx, "ignoring malformed authorization header")
			c.Next()
			return
		}
		user := s.auth.Authenticate(ctx, token)
		if user == nil {
			s.logger.Debug(ctx, "ignoring unverifiable bearer token")
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(auth.WithUser(ctx, user))
		c.Next()
	}
}
