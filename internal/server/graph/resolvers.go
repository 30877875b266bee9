package graph

import (
	"context"
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/server/auth"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/dmitrijs2005/eventgraph/internal/server/services"
)

func fieldName(p graphql.ResolveParams) string {
	if p.Info.ParentType == nil {
		return p.Info.FieldName
	}
	return p.Info.ParentType.Name() + "." + p.Info.FieldName
}

func stringArg(args map[string]interface{}, name string) string {
	v, _ := args[name].(string)
	return v
}

func optionalString(args map[string]interface{}, name string) *string {
	v, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &v
}

func optionalInt(args map[string]interface{}, name string) *int {
	v, ok := args[name].(int)
	if !ok {
		return nil
	}
	return &v
}

func inputArg(p graphql.ResolveParams) map[string]interface{} {
	in, _ := p.Args["input"].(map[string]interface{})
	return in
}

// loader returns the request's Loader, or an unshared one when the schema
// is executed without Execute.
func (s *Schema) loader(ctx context.Context) *Loader {
	if l := loaderFrom(ctx); l != nil {
		return l
	}
	return newLoader(ctx, s.users, s.events, s.comments, s.logger)
}

// Queries

func (s *Schema) resolveMe(p graphql.ResolveParams) (interface{}, error) {
	u := auth.UserFromContext(p.Context)
	if u == nil {
		return nil, nil
	}
	return u, nil
}

func (s *Schema) resolveUsers(p graphql.ResolveParams) (interface{}, error) {
	list, err := s.users.List(p.Context, optionalInt(p.Args, "limit"), optionalInt(p.Args, "offset"))
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime(list, nil)
	return list, nil
}

func (s *Schema) resolveEvents(p graphql.ResolveParams) (interface{}, error) {
	list, err := s.events.List(p.Context, optionalString(p.Args, "search"), optionalInt(p.Args, "limit"), optionalInt(p.Args, "offset"))
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime(nil, list)
	return list, nil
}

func (s *Schema) resolveTotalEventsCount(p graphql.ResolveParams) (interface{}, error) {
	n, err := s.events.Count(p.Context, optionalString(p.Args, "search"))
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	return n, nil
}

// resolveEvent returns null for unknown or malformed ids.
func (s *Schema) resolveEvent(p graphql.ResolveParams) (interface{}, error) {
	event, err := s.events.Get(p.Context, stringArg(p.Args, "id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime(nil, []*models.Event{event})
	return event, nil
}

func (s *Schema) resolveComments(p graphql.ResolveParams) (interface{}, error) {
	list, err := s.comments.ListByEvent(p.Context, stringArg(p.Args, "eventId"))
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	return list, nil
}

// Mutations

func (s *Schema) resolveRegisterUser(p graphql.ResolveParams) (interface{}, error) {
	in := inputArg(p)
	payload, err := s.users.Register(p.Context, services.RegisterInput{
		Name:            stringArg(in, "name"),
		Email:           stringArg(in, "email"),
		Password:        stringArg(in, "password"),
		ConfirmPassword: stringArg(in, "confirmPassword"),
	})
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	return payload, nil
}

func (s *Schema) resolveLogin(p graphql.ResolveParams) (interface{}, error) {
	payload, err := s.users.Login(p.Context, stringArg(p.Args, "email"), stringArg(p.Args, "password"))
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	return payload, nil
}

func (s *Schema) resolveCreateEvent(p graphql.ResolveParams) (interface{}, error) {
	user := auth.UserFromContext(p.Context)
	in := inputArg(p)
	event, err := s.events.Create(p.Context, user, services.CreateEventInput{
		Title:       stringArg(in, "title"),
		Description: optionalString(in, "description"),
		Date:        stringArg(in, "date"),
	})
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime([]*models.User{user}, []*models.Event{event})
	return event, nil
}

func (s *Schema) resolveJoinEvent(p graphql.ResolveParams) (interface{}, error) {
	user := auth.UserFromContext(p.Context)
	event, err := s.events.Join(p.Context, user, stringArg(p.Args, "eventId"))
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime([]*models.User{user}, []*models.Event{event})
	return event, nil
}

func (s *Schema) resolveAddComment(p graphql.ResolveParams) (interface{}, error) {
	user := auth.UserFromContext(p.Context)
	in := inputArg(p)
	comment, err := s.comments.Add(p.Context, user, services.AddCommentInput{
		EventID: stringArg(in, "eventId"),
		Text:    stringArg(in, "text"),
	})
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime([]*models.User{user}, nil)
	return comment, nil
}

// Relationships

func (s *Schema) resolveUserEvents(p graphql.ResolveParams) (interface{}, error) {
	u, ok := p.Source.(*models.User)
	if !ok {
		return nil, nil
	}
	list, err := s.events.ListByUser(p.Context, u.ID)
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	s.loader(p.Context).Prime(nil, list)
	return list, nil
}

func (s *Schema) resolveUserComments(p graphql.ResolveParams) (interface{}, error) {
	u, ok := p.Source.(*models.User)
	if !ok {
		return nil, nil
	}
	list, err := s.comments.ListByAuthor(p.Context, u.ID)
	if err != nil {
		return nil, s.fail(p.Context, fieldName(p), err)
	}
	return list, nil
}

func (s *Schema) resolveEventCreator(p graphql.ResolveParams) (interface{}, error) {
	e, ok := p.Source.(*models.Event)
	if !ok {
		return nil, nil
	}
	return s.loader(p.Context).User(e.CreatedBy), nil
}

func (s *Schema) resolveEventAttendees(p graphql.ResolveParams) (interface{}, error) {
	e, ok := p.Source.(*models.Event)
	if !ok {
		return nil, nil
	}
	return s.loader(p.Context).Users(e.Attendees), nil
}

func (s *Schema) resolveEventComments(p graphql.ResolveParams) (interface{}, error) {
	e, ok := p.Source.(*models.Event)
	if !ok {
		return nil, nil
	}
	return s.loader(p.Context).Comments(e.ID), nil
}

func (s *Schema) resolveCommentAuthor(p graphql.ResolveParams) (interface{}, error) {
	c, ok := p.Source.(*models.Comment)
	if !ok {
		return nil, nil
	}
	return s.loader(p.Context).User(c.AuthorID), nil
}

func (s *Schema) resolveCommentEvent(p graphql.ResolveParams) (interface{}, error) {
	c, ok := p.Source.(*models.Comment)
	if !ok {
		return nil, nil
	}
	return s.loader(p.Context).Event(c.EventID), nil
}
