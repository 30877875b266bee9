package comments

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventgraph/internal/common"
	"github.com/dmitrijs2005/eventgraph/internal/dbx"
	"github.com/dmitrijs2005/eventgraph/internal/server/models"
)

const (
	commentColumns = `id, text, created_at, author_id, event_id`
	commentOrder   = ` ORDER BY created_at ASC, seq ASC`
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if !dbx.IsUUID(comment.EventID) || !dbx.IsUUID(comment.AuthorID) {
		return nil, common.ErrorNotFound
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO comments (event_id, author_id, text, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		comment.EventID, comment.AuthorID, comment.Text, comment.CreatedAt).Scan(&comment.ID)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

func (r *PostgresRepository) ListByEvent(ctx context.Context, eventID string) ([]*models.Comment, error) {
	if !dbx.IsUUID(eventID) {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments WHERE event_id = $1`+commentOrder, eventID)
}

func (r *PostgresRepository) ListByAuthor(ctx context.Context, authorID string) ([]*models.Comment, error) {
	if !dbx.IsUUID(authorID) {
		return nil, nil
	}
	return r.query(ctx, `SELECT `+commentColumns+` FROM comments WHERE author_id = $1`+commentOrder, authorID)
}

func (r *PostgresRepository) ListByEvents(ctx context.Context, eventIDs []string) (map[string][]*models.Comment, error) {
	grouped := make(map[string][]*models.Comment)
	valid := dbx.ValidUUIDs(eventIDs)
	if len(valid) == 0 {
		return grouped, nil
	}

	query := `SELECT ` + commentColumns + ` FROM comments WHERE event_id IN (` +
		dbx.Placeholders(1, len(valid)) + `)` + commentOrder
	list, err := r.query(ctx, query, dbx.Args(valid)...)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		grouped[c.EventID] = append(grouped[c.EventID], c)
	}
	return grouped, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]*models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.CreatedAt, &c.AuthorID, &c.EventID); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
