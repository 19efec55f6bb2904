// Package dbx holds the data-access primitives every repository is built on:
// the DBTX interface satisfied by both *sql.DB and *sql.Tx, a transaction
// helper, and Executor, the single place where SQL statements are run.
package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// DBTX is the subset of database/sql used by the executor.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn against a transaction on db. The transaction commits when fn
// returns nil and rolls back when fn fails or panics; a panic continues after
// the rollback. Errors from fn are returned as-is so callers can still match
// sentinels such as common.ErrorNotFound. Begin and commit failures are
// wrapped as db errors.
//
// TaskService.Update uses it to write a patch and read the row back in one
// transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    n, err := dbx.NewExecutor(tx).Exec(ctx, "UPDATE tasks SET title = $1 WHERE id = $2 AND owner_id = $3", title, id, owner)
//	    ...
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("db error: begin: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("db error: rollback: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("db error: commit: %w", cErr)
		}
	}()

	return fn(ctx, tx)
}
