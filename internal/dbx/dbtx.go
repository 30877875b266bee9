// Package dbx holds the SQL plumbing shared by the Postgres stores for users,
// events and comments: the query handle they accept, transactions for
// multi-statement writes such as joining an event, UUID checks and pgconn
// error classification.
package dbx

import (
	"context"
	"database/sql"
)

// DBTX is what a store query needs. *sql.DB and *sql.Tx both satisfy it, so
// helpers like the event row loader run inside or outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB is the pool side of DBTX.
type DB interface {
	DBTX
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// WithTx runs fn in one transaction. A join inserts the attendee row and
// reads the event back through tx, so the returned attendee list includes it:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    if _, err := tx.ExecContext(ctx, insertAttendee, eventID, userID); err != nil {
//	        return err
//	    }
//	    event, err = loadEvent(ctx, tx, eventID)
//	    return err
//	})
//
// fn's error or panic rolls back; a panic is re-raised after the rollback.
// Otherwise the commit error is returned.
func WithTx(ctx context.Context, db DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		switch p := recover(); {
		case p != nil:
			_ = tx.Rollback()
			panic(p)
		case err != nil:
			_ = tx.Rollback()
		default:
			err = tx.Commit()
		}
	}()

	return fn(ctx, tx)
}
