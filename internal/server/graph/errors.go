package graph

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/eventgraph/internal/common"
)

// Error codes reported under extensions.code.
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
)

const internalMessage = "internal error"

// errInternal is returned from loader thunks; graphql-go drops extensions on
// deferred errors, so only the message reaches the client.
var errInternal = &Error{Message: internalMessage, Code: CodeInternal}

// Error is a resolver error that graphql-go renders with extensions.
type Error struct {
	Message string
	Code    string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": e.Code}
}

// codeOf maps a service sentinel to its wire code.
func codeOf(kind error) string {
	switch {
	case errors.Is(kind, common.ErrorValidation):
		return CodeValidation
	case errors.Is(kind, common.ErrorUnauthorized):
		return CodeUnauthenticated
	case errors.Is(kind, common.ErrorNotFound):
		return CodeNotFound
	case errors.Is(kind, common.ErrorConflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// fail converts err into an *Error. Only messages carried by *common.Error
// reach the client; anything else is logged and replaced.
func (s *Schema) fail(ctx context.Context, op string, err error) error {
	var known *common.Error
	if errors.As(err, &known) {
		code := codeOf(known.Kind)
		if code != CodeInternal {
			return &Error{Message: known.Message, Code: code}
		}
	}
	if !errors.Is(err, common.ErrorInternal) {
		s.metrics.ObserveError(op)
		s.logger.Error(ctx, "resolver failed", "operation", op, "error", err)
	}
	return &Error{Message: internalMessage, Code: CodeInternal}
}
