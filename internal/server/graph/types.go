package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/dmitrijs2005/eventgraph/internal/server/services"
	"github.com/dmitrijs2005/eventgraph/internal/timex"
)

type objectTypes struct {
	user        *graphql.Object
	event       *graphql.Object
	comment     *graphql.Object
	authPayload *graphql.Object
}

// defineTypes builds the output types. User, Event and Comment reference each
// other, so their fields are declared lazily.
func (s *Schema) defineTypes() *objectTypes {
	t := &objectTypes{}

	t.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: userField(func(u *models.User) interface{} { return u.ID }),
				},
				"name": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: userField(func(u *models.User) interface{} { return u.Name }),
				},
				"email": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: userField(func(u *models.User) interface{} { return u.Email }),
				},
				"events": &graphql.Field{
					Type:        nonNullList(t.event),
					Description: "Events the user created or joined",
					Resolve:     s.resolveUserEvents,
				},
				"comments": &graphql.Field{
					Type:    nonNullList(t.comment),
					Resolve: s.resolveUserComments,
				},
			}
		}),
	})

	t.event = graphql.NewObject(graphql.ObjectConfig{
		Name: "Event",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: eventField(func(e *models.Event) interface{} { return e.ID }),
				},
				"title": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: eventField(func(e *models.Event) interface{} { return e.Title }),
				},
				"description": &graphql.Field{
					Type: graphql.String,
					Resolve: eventField(func(e *models.Event) interface{} {
						if e.Description == nil {
							return nil
						}
						return *e.Description
					}),
				},
				"date": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: eventField(func(e *models.Event) interface{} { return timex.FormatISO(e.Date) }),
				},
				"createdAt": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: eventField(func(e *models.Event) interface{} { return timex.FormatISO(e.CreatedAt) }),
				},
				"createdBy": &graphql.Field{
					Type:    graphql.NewNonNull(t.user),
					Resolve: s.resolveEventCreator,
				},
				"attendees": &graphql.Field{
					Type:        nonNullList(t.user),
					Description: "Users who joined, in join order",
					Resolve:     s.resolveEventAttendees,
				},
				"attendeeCount": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.Int),
					Resolve: eventField(func(e *models.Event) interface{} { return len(e.Attendees) }),
				},
				"comments": &graphql.Field{
					Type:    nonNullList(t.comment),
					Resolve: s.resolveEventComments,
				},
			}
		}),
	})

	t.comment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Comment",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.ID),
					Resolve: commentField(func(c *models.Comment) interface{} { return c.ID }),
				},
				"text": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: commentField(func(c *models.Comment) interface{} { return c.Text }),
				},
				"createdAt": &graphql.Field{
					Type:    graphql.NewNonNull(graphql.String),
					Resolve: commentField(func(c *models.Comment) interface{} { return timex.FormatISO(c.CreatedAt) }),
				},
				"author": &graphql.Field{
					Type:    graphql.NewNonNull(t.user),
					Resolve: s.resolveCommentAuthor,
				},
				"event": &graphql.Field{
					Type:    graphql.NewNonNull(t.event),
					Resolve: s.resolveCommentEvent,
				},
			}
		}),
	})

	t.authPayload = graphql.NewObject(graphql.ObjectConfig{
		Name: "AuthPayload",
		Fields: graphql.Fields{
			"token": &graphql.Field{
				Type: graphql.NewNonNull(graphql.String),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if a, ok := p.Source.(*services.AuthPayload); ok {
						return a.Token, nil
					}
					return nil, nil
				},
			},
			"user": &graphql.Field{
				Type: graphql.NewNonNull(t.user),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					if a, ok := p.Source.(*services.AuthPayload); ok && a.User != nil {
						return a.User, nil
					}
					return nil, nil
				},
			},
		},
	})

	return t
}

var (
	registerInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateUserInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"name":            &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"email":           &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"password":        &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"confirmPassword": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})

	createEventInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateEventInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"title":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
			"description": &graphql.InputObjectFieldConfig{Type: graphql.String},
			"date": &graphql.InputObjectFieldConfig{
				Type:        graphql.NewNonNull(graphql.String),
				Description: "ISO-8601 date or date-time",
			},
		},
	})

	addCommentInputType = graphql.NewInputObject(graphql.InputObjectConfig{
		Name: "CreateCommentInput",
		Fields: graphql.InputObjectConfigFieldMap{
			"eventId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
			"text":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		},
	})
)

func nonNullList(of graphql.Type) graphql.Output {
	return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(of)))
}

func userField(get func(*models.User) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if u, ok := p.Source.(*models.User); ok {
			return get(u), nil
		}
		return nil, nil
	}
}

func eventField(get func(*models.Event) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if e, ok := p.Source.(*models.Event); ok {
			return get(e), nil
		}
		return nil, nil
	}
}

func commentField(get func(*models.Comment) interface{}) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if c, ok := p.Source.(*models.Comment); ok {
			return get(c), nil
		}
		return nil, nil
	}
}
