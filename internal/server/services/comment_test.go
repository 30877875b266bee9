package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@x.com").User
	e, err := f.events.Create(ctx, alice, CreateEventInput{Title: "Meetup", Date: "2025-01-10"})
	require.NoError(t, err)

	c, err := f.comments.Add(ctx, alice, AddCommentInput{EventID: e.ID, Text: "hi"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, c.AuthorID)
	assert.Equal(t, e.ID, c.EventID)
	assert.Equal(t, "hi", c.Text)
	assert.True(t, c.CreatedAt.After(e.CreatedAt))

	list, err := f.comments.ListByEvent(ctx, e.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, c.ID, list[0].ID)

	byAuthor, err := f.comments.ListByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, byAuthor, 1)

	grouped, err := f.comments.ListByEvents(ctx, []string{e.ID})
	require.NoError(t, err)
	assert.Len(t, grouped[e.ID], 1)
}

func TestAddComment_TimestampAfterEventEvenWithStalledClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@x.com").User
	e, err := f.events.Create(ctx, alice, CreateEventInput{Title: "Meetup", Date: "2025-01-10"})
	require.NoError(t, err)

	frozen := NewCommentService(f.repos, logging.Nop{}).WithClock(func() time.Time { return e.CreatedAt })
	c, err := frozen.Add(ctx, alice, AddCommentInput{EventID: e.ID, Text: "same instant"})
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.After(e.CreatedAt))
}

func TestAddComment_ErrorOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, "Alice", "alice@x.com").User

	_, err := f.comments.Add(ctx, nil, AddCommentInput{EventID: "missing", Text: "  "})
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err = f.comments.Add(ctx, alice, AddCommentInput{EventID: "missing", Text: " \t "})
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.EqualError(t, err, "comment text is required")

	_, err = f.comments.Add(ctx, alice, AddCommentInput{EventID: "missing", Text: "hi"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.EqualError(t, err, "event not found")
}

func TestListComments_UnknownEvent(t *testing.T) {
	f := newFixture(t)

	list, err := f.comments.ListByEvent(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, list)
}
