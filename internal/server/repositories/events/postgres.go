package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/dbx"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

const (
	eventColumns = `e.id, e.title, e.description, e.date, e.created_by, e.created_at`
	eventOrder   = ` ORDER BY e.date DESC, e.seq ASC`
)

// PostgresRepository needs a dbx.DB because joining runs in a transaction.
type PostgresRepository struct {
	db dbx.DB
}

func NewPostgresRepository(db dbx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO events (title, description, date, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		event.Title, event.Description, event.Date, event.CreatedBy, event.CreatedAt).Scan(&event.ID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidInput(err) {
			return nil, fmt.Errorf("%w: creator", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if event.Attendees == nil {
		event.Attendees = []string{}
	}
	return event, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	return r.getByID(ctx, r.db, id)
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.Event, error) {
	valid := dbx.ValidUUIDs(ids)
	if len(valid) == 0 {
		return nil, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id IN (` + dbx.Placeholders(1, len(valid)) + `)`
	return r.query(ctx, r.db, query, dbx.Args(valid)...)
}

func (r *PostgresRepository) List(ctx context.Context, filter models.EventFilter, limit, offset int) ([]*models.Event, error) {
	where, args := searchClause(filter)
	n := len(args)
	query := `SELECT ` + eventColumns + ` FROM events e` + where + eventOrder +
		fmt.Sprintf(` LIMIT $%d OFFSET $%d`, n+1, n+2)
	return r.query(ctx, r.db, query, append(args, limit, offset)...)
}

func (r *PostgresRepository) Count(ctx context.Context, filter models.EventFilter) (int, error) {
	where, args := searchClause(filter)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM events e`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) AddAttendee(ctx context.Context, eventID, userID string) (*models.Event, error) {
	if !dbx.IsUUID(eventID) || !dbx.IsUUID(userID) {
		return nil, common.ErrorNotFound
	}

	var event *models.Event
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO event_attendees (event_id, user_id)
			 SELECT id, $2 FROM events WHERE id = $1
			 ON CONFLICT (event_id, user_id) DO NOTHING`,
			eventID, userID)
		if err != nil {
			if dbx.IsForeignKeyViolation(err) {
				return common.ErrorNotFound
			}
			return fmt.Errorf("db error: %w", err)
		}

		event, err = r.getByID(ctx, tx, eventID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return event, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Event, error) {
	if !dbx.IsUUID(userID) {
		return nil, nil
	}
	query := `SELECT ` + eventColumns + ` FROM events e
		WHERE e.created_by = $1
		   OR EXISTS (SELECT 1 FROM event_attendees a WHERE a.event_id = e.id AND a.user_id = $1)` + eventOrder
	return r.query(ctx, r.db, query, userID)
}

func (r *PostgresRepository) getByID(ctx context.Context, q dbx.DBTX, id string) (*models.Event, error) {
	if !dbx.IsUUID(id) {
		return nil, common.ErrorNotFound
	}

	var (
		e    models.Event
		desc sql.NullString
	)
	err := q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id).
		Scan(&e.ID, &e.Title, &desc, &e.Date, &e.CreatedBy, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidInput(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if desc.Valid {
		e.Description = &desc.String
	}

	if err := r.loadAttendees(ctx, q, []*models.Event{&e}); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRepository) query(ctx context.Context, q dbx.DBTX, query string, args ...any) ([]*models.Event, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		var (
			e    models.Event
			desc sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Title, &desc, &e.Date, &e.CreatedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if desc.Valid {
			e.Description = &desc.String
		}
		result = append(result, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := r.loadAttendees(ctx, q, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadAttendees fills Attendees for all events with one query, in join order.
func (r *PostgresRepository) loadAttendees(ctx context.Context, q dbx.DBTX, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	byID := make(map[string]*models.Event, len(events))
	ids := make([]string, 0, len(events))
	for _, e := range events {
		e.Attendees = []string{}
		byID[e.ID] = e
		ids = append(ids, e.ID)
	}

	query := `SELECT event_id, user_id FROM event_attendees WHERE event_id IN (` +
		dbx.Placeholders(1, len(ids)) + `) ORDER BY seq`
	rows, err := q.QueryContext(ctx, query, dbx.Args(ids)...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, userID string
		if err := rows.Scan(&eventID, &userID); err != nil {
			return fmt.Errorf("db error: %w", err)
		}
		if e, ok := byID[eventID]; ok {
			e.Attendees = append(e.Attendees, userID)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func searchClause(filter models.EventFilter) (string, []any) {
	term := filter.Term()
	if term == "" {
		return "", nil
	}
	return ` WHERE e.title ILIKE $1 ESCAPE '\'`, []any{"%" + dbx.EscapeLike(term) + "%"}
}
