// Package graph exposes the services as a GraphQL schema. Relationship
// fields are served by a per-request Loader so that sibling lookups are
// fetched in one batch.
package graph

import (
	"context"
	"errors"
	"time"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"

	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/metrics"
	"github.com/dmitrijs2005/eventgraph/internal/server/services"
)

// Request is the standard GraphQL-over-HTTP request body.
type Request struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
}

var ErrOperationNotFound = errors.New("operation not found")

// Schema holds the compiled schema and the services its resolvers call.
type Schema struct {
	schema   graphql.Schema
	users    *services.UserService
	events   *services.EventService
	comments *services.CommentService
	logger   logging.Logger
	metrics  *metrics.Metrics
}

// NewSchema compiles the schema. m may be nil.
func NewSchema(users *services.UserService, events *services.EventService, comments *services.CommentService, logger logging.Logger, m *metrics.Metrics) (*Schema, error) {
	s := &Schema{
		users:    users,
		events:   events,
		comments: comments,
		logger:   logger.With("module", "graph"),
		metrics:  m,
	}

	t := s.defineTypes()

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"me": &graphql.Field{
				Type:        t.user,
				Description: "The authenticated user, or null for anonymous requests",
				Resolve:     s.resolveMe,
			},
			"users": &graphql.Field{
				Type: nonNullList(t.user),
				Args: graphql.FieldConfigArgument{
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: s.resolveUsers,
			},
			"events": &graphql.Field{
				Type: nonNullList(t.event),
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{
						Type:        graphql.String,
						Description: "Case-insensitive title substring",
					},
					"limit":  &graphql.ArgumentConfig{Type: graphql.Int},
					"offset": &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: s.resolveEvents,
			},
			"totalEventsCount": &graphql.Field{
				Type: graphql.NewNonNull(graphql.Int),
				Args: graphql.FieldConfigArgument{
					"search": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: s.resolveTotalEventsCount,
			},
			"event": &graphql.Field{
				Type: t.event,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveEvent,
			},
			"comments": &graphql.Field{
				Type: nonNullList(t.comment),
				Args: graphql.FieldConfigArgument{
					"eventId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveComments,
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"registerUser": &graphql.Field{
				Type: graphql.NewNonNull(t.authPayload),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(registerInputType)},
				},
				Resolve: s.resolveRegisterUser,
			},
			"login": &graphql.Field{
				Type: graphql.NewNonNull(t.authPayload),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: s.resolveLogin,
			},
			"createEvent": &graphql.Field{
				Type: graphql.NewNonNull(t.event),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(createEventInputType)},
				},
				Resolve: s.resolveCreateEvent,
			},
			"joinEvent": &graphql.Field{
				Type: graphql.NewNonNull(t.event),
				Args: graphql.FieldConfigArgument{
					"eventId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
				},
				Resolve: s.resolveJoinEvent,
			},
			"addComment": &graphql.Field{
				Type: graphql.NewNonNull(t.comment),
				Args: graphql.FieldConfigArgument{
					"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(addCommentInputType)},
				},
				Resolve: s.resolveAddComment,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
	if err != nil {
		return nil, err
	}
	s.schema = schema
	return s, nil
}

// Execute runs req against the schema with a fresh Loader. The current user
// must already be attached to ctx.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	started := time.Now()
	loader := newLoader(ctx, s.users, s.events, s.comments, s.logger)

	result := graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        withLoader(ctx, loader),
	})

	opType, err := OperationType(req.Query, req.OperationName)
	if err != nil {
		opType = "invalid"
	}
	s.metrics.ObserveOperation(opType, result.HasErrors(), time.Since(started))
	s.logger.Debug(ctx, "graphql executed",
		"operation", req.OperationName,
		"type", opType,
		"errors", len(result.Errors),
		"batches", loader.Batches(),
		"duration", time.Since(started),
	)
	return result
}

// OperationType parses query and returns "query" or "mutation" for the
// operation that would run. operationName may be empty when the document
// holds a single operation.
func OperationType(query, operationName string) (string, error) {
	doc, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return "", err
	}

	var ops []*ast.OperationDefinition
	for _, def := range doc.Definitions {
		if op, ok := def.(*ast.OperationDefinition); ok {
			ops = append(ops, op)
		}
	}

	for _, op := range ops {
		name := ""
		if op.Name != nil {
			name = op.Name.Value
		}
		if operationName == "" && len(ops) == 1 || name == operationName && operationName != "" {
			return op.Operation, nil
		}
	}
	return "", ErrOperationNotFound
}
