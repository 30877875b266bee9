package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/dmitrijs2005/eventgraph/internal/server/repositories/repomanager"
)

// AddCommentInput mirrors the addComment mutation input.
type AddCommentInput struct {
	EventID string
	Text    string
}

// CommentService adds and lists comments.
type CommentService struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         Clock
}

func NewCommentService(m repomanager.RepositoryManager, logger logging.Logger) *CommentService {
	return &CommentService{
		repomanager: m,
		logger:      logger.With("module", "comments"),
		now:         time.Now,
	}
}

// WithClock replaces the time source.
func (s *CommentService) WithClock(now Clock) *CommentService {
	s.now = now
	return s
}

// Add checks, in order: session, non-blank text, existing event. The
// comment timestamp is always strictly after the event's creation time.
func (s *CommentService) Add(ctx context.Context, user *models.User, in AddCommentInput) (*models.Comment, error) {
	if err := requireUser(user); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Text) == "" {
		return nil, common.NewError(common.ErrorValidation, "comment text is required")
	}

	event, err := s.repomanager.Events().GetByID(ctx, in.EventID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errEventNotFound
		}
		s.logger.Error(ctx, "load event for comment", "event_id", in.EventID, "error", err)
		return nil, common.ErrorInternal
	}

	createdAt := stamp(s.now)
	if !createdAt.After(event.CreatedAt) {
		createdAt = event.CreatedAt.Add(time.Millisecond)
	}

	comment, err := s.repomanager.Comments().Create(ctx, &models.Comment{
		Text:      in.Text,
		CreatedAt: createdAt,
		AuthorID:  user.ID,
		EventID:   event.ID,
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, errEventNotFound
		}
		s.logger.Error(ctx, "create comment", "event_id", event.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return comment, nil
}

// ListByEvent is empty for unknown or malformed ids.
func (s *CommentService) ListByEvent(ctx context.Context, eventID string) ([]*models.Comment, error) {
	return s.repomanager.Comments().ListByEvent(ctx, eventID)
}

func (s *CommentService) ListByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	return s.repomanager.Comments().ListByAuthor(ctx, authorID)
}

// ListByEvents groups comments for several events in one store call.
func (s *CommentService) ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*models.Comment, error) {
	return s.repomanager.Comments().ListByEvents(ctx, eventIDs)
}
