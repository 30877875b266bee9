package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/dmitrijs2005/eventgraph/internal/server/auth"
	"github.com/dmitrijs2005/eventgraph/internal/server/graph"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Errors []errorItem `json:"errors"`
}

type errorItem struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// abortWithError writes a GraphQL-shaped error list for failures that
// happen before execution.
func abortWithError(c *gin.Context, status int, message, code string) {
	c.AbortWithStatusJSON(status, errorBody{Errors: []errorItem{{
		Message:    message,
		Extensions: map[string]any{"code": code},
	}}})
}

// readRequest decodes the operation from a POST body or GET query string.
func readRequest(c *gin.Context) (graph.Request, bool) {
	var req graph.Request
	if c.Request.Method == http.MethodGet {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &req.Variables); err != nil {
				abortWithError(c, http.StatusBadRequest, "variables must be a JSON object", "BAD_REQUEST")
				return req, false
			}
		}
	} else {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
			abortWithError(c, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return req, false
		}
	}

	if req.Query == "" {
		abortWithError(c, http.StatusBadRequest, "query is required", "BAD_REQUEST")
		return req, false
	}
	return req, true
}

func (s *Server) handleGraphQL(c *gin.Context) {
	req, ok := readRequest(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// parse errors are reported by execution itself
	opType, _ := graph.OperationType(req.Query, req.OperationName)
	if opType == ast.OperationTypeMutation && c.Request.Method == http.MethodGet {
		abortWithError(c, http.StatusMethodNotAllowed, "mutations must use POST", "BAD_REQUEST")
		return
	}

	cacheable := s.cache != nil && opType == ast.OperationTypeQuery && auth.UserFromContext(ctx) == nil
	var key string
	if cacheable {
		var err error
		key, err = s.cache.Key(ctx, req)
		if err != nil {
			s.logger.Warn(ctx, "cache key", "error", err)
			cacheable = false
		} else if body, hit := s.cache.Get(ctx, key); hit {
			c.Header(headerCache, "HIT")
			c.Data(http.StatusOK, "application/json; charset=utf-8", body)
			return
		}
	}

	result := s.schema.Execute(ctx, req)
	body, err := json.Marshal(result)
	if err != nil {
		s.logger.Error(ctx, "encode graphql result", "error", err)
		abortWithError(c, http.StatusInternalServerError, "internal error", graph.CodeInternal)
		return
	}

	if opType == ast.OperationTypeMutation && s.cache != nil && wroteData(result) {
		s.cache.Invalidate(ctx)
	}
	if cacheable {
		c.Header(headerCache, "MISS")
		if !result.HasErrors() {
			s.cache.Set(ctx, key, body)
		}
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// wroteData reports whether at least one mutation field produced a value.
// Rejected mutations leave the store untouched and keep the cache.
func wroteData(result *graphql.Result) bool {
	data, ok := result.Data.(map[string]interface{})
	if !ok {
		return false
	}
	for _, v := range data {
		if v != nil {
			return true
		}
	}
	return false
}
