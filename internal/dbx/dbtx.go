// Package dbx holds the database/sql plumbing shared by the SQLite
// repositories: the DBTX handle satisfied by both *sql.DB and *sql.Tx, and
// helpers for running work inside a transaction.
package dbx

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX is the subset of database/sql used by repositories.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a new transaction on db. The transaction commits when
// fn returns nil and rolls back when fn returns an error or panics; panics are
// rethrown after the rollback.
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "DELETE FROM events")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()

	return fn(ctx, tx)
}

// Atomically runs fn so that its writes land together. A handle that is
// already a transaction is used as is; a *sql.DB gets a fresh transaction.
// Any other DBTX implementation is passed through unchanged.
func Atomically(ctx context.Context, q DBTX, fn func(ctx context.Context, tx DBTX) error) error {
	if db, ok := q.(*sql.DB); ok {
		return WithTx(ctx, db, nil, fn)
	}
	return fn(ctx, q)
}
