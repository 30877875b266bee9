package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, repo *MemoryRepository, title string, date time.Time, creator string) *models.Event {
	t.Helper()
	e, err := repo.Create(context.Background(), &models.Event{Title: title, Date: date, CreatedBy: creator})
	require.NoError(t, err)
	return e
}

func TestMemoryRepository_ListOrderingAndPaging(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	older := mustCreate(t, repo, "Older", day.Add(-24*time.Hour), "u1")
	first := mustCreate(t, repo, "Same day A", day, "u1")
	second := mustCreate(t, repo, "Same day B", day, "u1")

	all, err := repo.List(ctx, models.EventFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{first.ID, second.ID, older.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	page, err := repo.List(ctx, models.EventFilter{}, 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, second.ID, page[0].ID)

	beyond, err := repo.List(ctx, models.EventFilter{}, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestMemoryRepository_SearchAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	mustCreate(t, repo, "Go Meetup", day, "u1")
	mustCreate(t, repo, "Rust meetup", day, "u1")
	mustCreate(t, repo, "Party", day, "u1")

	got, err := repo.List(ctx, models.EventFilter{Search: "MEETUP"}, 10, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	n, err := repo.Count(ctx, models.EventFilter{Search: "meet"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.Count(ctx, models.EventFilter{Search: "  "})
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestMemoryRepository_AddAttendeeIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	e := mustCreate(t, repo, "Meetup", day, "u1")

	_, err := repo.AddAttendee(ctx, e.ID, "u2")
	require.NoError(t, err)
	got, err := repo.AddAttendee(ctx, e.ID, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, got.Attendees)

	_, err = repo.AddAttendee(ctx, "missing", "u2")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemoryRepository_ConcurrentJoins(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	e := mustCreate(t, repo, "Meetup", day, "u1")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = repo.AddAttendee(ctx, e.ID, fmt.Sprintf("u%d", i%25))
		}(i)
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Len(t, got.Attendees, 25)
}

func TestMemoryRepository_ListByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	created := mustCreate(t, repo, "Mine", day, "u1")
	joined := mustCreate(t, repo, "Theirs", day.Add(time.Hour), "u2")
	mustCreate(t, repo, "Unrelated", day, "u3")

	_, err := repo.AddAttendee(ctx, joined.ID, "u1")
	require.NoError(t, err)
	_, err = repo.AddAttendee(ctx, created.ID, "u1")
	require.NoError(t, err)

	got, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, joined.ID, got[0].ID)
	assert.Equal(t, created.ID, got[1].ID)
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	e := mustCreate(t, repo, "Meetup", day, "u1")

	got, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	got.Attendees = append(got.Attendees, "intruder")
	got.Title = "changed"

	again, err := repo.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meetup", again.Title)
	assert.Empty(t, again.Attendees)
}
