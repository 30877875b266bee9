package events

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	eid1 = "11111111-1111-4111-8111-111111111111"
	eid2 = "22222222-2222-4222-8222-222222222222"
	uid1 = "aaaaaaaa-aaaa-4aaa-8aaa-aaaaaaaaaaaa"
	uid2 = "bbbbbbbb-bbbb-4bbb-8bbb-bbbbbbbbbbbb"
)

var (
	eventCols    = []string{"id", "title", "description", "date", "created_by", "created_at"}
	attendeeCols = []string{"event_id", "user_id"}
	day          = time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
)

const attendeesQ = `(?s)^SELECT\s+event_id,\s*user_id\s+FROM\s+event_attendees\s+WHERE\s+event_id\s+IN\s+\(.*\)\s+ORDER\s+BY\s+seq$`

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+events\s*\(title,\s*description,\s*date,\s*created_by,\s*created_at\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+id$`
	mock.ExpectQuery(q).
		WithArgs("Meetup", nil, day, uid1, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(eid1))

	got, err := repo.Create(context.Background(), &models.Event{Title: "Meetup", Date: day, CreatedBy: uid1})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != eid1 || got.Attendees == nil || len(got.Attendees) != 0 {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestCreate_UnknownCreator(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT\s+INTO\s+events`).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	_, err := repo.Create(context.Background(), &models.Event{Title: "Meetup", Date: day, CreatedBy: uid1})
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByID_WithAttendees(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+events\s+e\s+WHERE\s+e\.id\s*=\s*\$1$`).
		WithArgs(eid1).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eid1, "Meetup", "bring snacks", day, uid1, day))
	mock.ExpectQuery(attendeesQ).
		WithArgs(eid1).
		WillReturnRows(sqlmock.NewRows(attendeeCols).AddRow(eid1, uid2).AddRow(eid1, uid1))

	got, err := repo.GetByID(context.Background(), eid1)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Description == nil || *got.Description != "bring snacks" {
		t.Fatalf("unexpected description: %v", got.Description)
	}
	if len(got.Attendees) != 2 || got.Attendees[0] != uid2 || got.Attendees[1] != uid1 {
		t.Fatalf("attendees must keep join order: %v", got.Attendees)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+events\s+e\s+WHERE\s+e\.id`).
		WithArgs(eid1).
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), eid1); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if _, err := repo.GetByID(context.Background(), "bogus"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("malformed id: want common.ErrorNotFound, got %v", err)
	}
}

func TestList_NoFilter(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+events\s+e\s+ORDER\s+BY\s+e\.date\s+DESC,\s*e\.seq\s+ASC\s+LIMIT\s+\$1\s+OFFSET\s+\$2$`
	mock.ExpectQuery(q).
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow(eid1, "Meetup", nil, day, uid1, day).
			AddRow(eid2, "Party", nil, day.Add(-time.Hour), uid1, day))
	mock.ExpectQuery(attendeesQ).
		WithArgs(eid1, eid2).
		WillReturnRows(sqlmock.NewRows(attendeeCols).AddRow(eid2, uid2))

	got, err := repo.List(context.Background(), models.EventFilter{Search: "   "}, 10, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Description != nil || len(got[0].Attendees) != 0 || got[1].Attendees[0] != uid2 {
		t.Fatalf("unexpected events: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestList_SearchEscapesPattern(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)FROM\s+events\s+e\s+WHERE\s+e\.title\s+ILIKE\s+\$1\s+ESCAPE\s+'\\'\s+ORDER\s+BY.*LIMIT\s+\$2\s+OFFSET\s+\$3$`
	mock.ExpectQuery(q).
		WithArgs(`%100\%%`, 5, 20).
		WillReturnRows(sqlmock.NewRows(eventCols))

	got, err := repo.List(context.Background(), models.EventFilter{Search: "100%"}, 5, 20)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %+v", got)
	}
}

func TestCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+count\(\*\)\s+FROM\s+events\s+e\s+WHERE\s+e\.title\s+ILIKE`).
		WithArgs("%meet%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.Count(context.Background(), models.EventFilter{Search: "meet"})
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 3 {
		t.Fatalf("unexpected count %d", n)
	}
}

func TestCount_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT\s+count`).WillReturnError(errors.New("db down"))

	_, err := repo.Count(context.Background(), models.EventFilter{})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestAddAttendee_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+event_attendees\s*\(event_id,\s*user_id\)\s+SELECT\s+id,\s*\$2\s+FROM\s+events\s+WHERE\s+id\s*=\s*\$1\s+ON\s+CONFLICT\s+\(event_id,\s*user_id\)\s+DO\s+NOTHING$`).
		WithArgs(eid1, uid1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM\s+events\s+e\s+WHERE\s+e\.id`).
		WithArgs(eid1).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eid1, "Meetup", nil, day, uid1, day))
	mock.ExpectQuery(attendeesQ).
		WithArgs(eid1).
		WillReturnRows(sqlmock.NewRows(attendeeCols).AddRow(eid1, uid1))
	mock.ExpectCommit()

	got, err := repo.AddAttendee(context.Background(), eid1, uid1)
	if err != nil {
		t.Fatalf("AddAttendee error: %v", err)
	}
	if len(got.Attendees) != 1 || got.Attendees[0] != uid1 {
		t.Fatalf("unexpected attendees: %v", got.Attendees)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddAttendee_UnknownEventRollsBack(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT\s+INTO\s+event_attendees`).
		WithArgs(eid2, uid1).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM\s+events\s+e\s+WHERE\s+e\.id`).
		WithArgs(eid2).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.AddAttendee(context.Background(), eid2, uid1)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddAttendee_MalformedID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if _, err := repo.AddAttendee(context.Background(), "42", uid1); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestListByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)WHERE\s+e\.created_by\s*=\s*\$1\s+OR\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+event_attendees\s+a\s+WHERE\s+a\.event_id\s*=\s*e\.id\s+AND\s+a\.user_id\s*=\s*\$1\)\s+ORDER\s+BY`
	mock.ExpectQuery(q).
		WithArgs(uid2).
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow(eid1, "Meetup", nil, day, uid1, day))
	mock.ExpectQuery(attendeesQ).
		WithArgs(eid1).
		WillReturnRows(sqlmock.NewRows(attendeeCols).AddRow(eid1, uid2))

	got, err := repo.ListByUser(context.Background(), uid2)
	if err != nil {
		t.Fatalf("ListByUser error: %v", err)
	}
	if len(got) != 1 || got[0].ID != eid1 {
		t.Fatalf("unexpected events: %+v", got)
	}
}
