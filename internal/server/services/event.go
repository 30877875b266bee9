package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/config"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/eventgraph/internal/timex"
)

// CreateEventInput mirrors the createEvent mutation input.
type CreateEventInput struct {
	Title       string
	Description *string
	Date        string
}

var errEventNotFound = common.NewError(common.ErrorNotFound, "event not found")

// EventService creates, joins and lists events.
type EventService struct {
	repomanager     repomanager.RepositoryManager
	logger          logging.Logger
	defaultPageSize int
	maxPageSize     int
	now             Clock
}

func NewEventService(m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *EventService {
	return &EventService{
		repomanager:     m,
		logger:          logger.With("module", "events"),
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		now:             time.Now,
	}
}

// WithClock replaces the time source.
func (s *EventService) WithClock(now Clock) *EventService {
	s.now = now
	return s
}

// Create stores a new event owned by user with an empty attendee set.
func (s *EventService) Create(ctx context.Context, user *models.User, in CreateEventInput) (*models.Event, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Date) == "" {
		return nil, common.NewError(common.ErrorValidation, "title and date are required")
	}
	date, err := timex.ParseDate(in.Date)
	if err != nil {
		return nil, common.NewError(common.ErrorValidation, "invalid date")
	}

	var description *string
	if in.Description != nil && strings.TrimSpace(*in.Description) != "" {
		d := *in.Description
		description = &d
	}

	event, err := s.repomanager.Events().Create(ctx, &models.Event{
		Title:       title,
		Description: description,
		Date:        date,
		CreatedBy:   user.ID,
		CreatedAt:   stamp(s.now),
	})
	if err != nil {
		s.logger.Error(ctx, "create event", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "event created", "event_id", event.ID, "user_id", user.ID)
	return event, nil
}

// Join adds user to the event's attendees; joining twice changes nothing.
func (s *EventService) Join(ctx context.Context, user *models.User, eventID string) (*models.Event, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}

	event, err := s.repomanager.Events().AddAttendee(ctx, eventID, user.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errEventNotFound
		}
		s.logger.Error(ctx, "join event", "event_id", eventID, "error", err)
		return nil, common.ErrorInternal
	}
	return event, nil
}

// Get returns errEventNotFound for unknown or malformed ids.
func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.repomanager.Events().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errEventNotFound
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetByIDs(ctx context.Context, ids []string) ([]*models.Event, error) {
	return s.repomanager.Events().GetByIDs(ctx, ids)
}

// List returns one page of events matching search, newest date first.
func (s *EventService) List(ctx context.Context, search *string, limit, offset *int) ([]*models.Event, error) {
	l, o := common.Page(limit, offset, s.defaultPageSize, s.maxPageSize)
	return s.repomanager.Events().List(ctx, filterOf(search), l, o)
}

// Count ignores pagination.
func (s *EventService) Count(ctx context.Context, search *string) (int, error) {
	return s.repomanager.Events().Count(ctx, filterOf(search))
}

// ListByUser returns the events the user created or attends.
func (s *EventService) ListByUser(ctx context.Context, userID string) ([]*models.Event, error) {
	return s.repomanager.Events().ListByUser(ctx, userID)
}

func filterOf(search *string) models.EventFilter {
	if search == nil {
		return models.EventFilter{}
	}
	return models.EventFilter{Search: *search}
}
