package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Executor runs parameterized statements and returns rows as Row mappings.
// Values are always passed as bind arguments; the query text must never
// contain caller-supplied data.
type Executor struct {
	db DBTX
}

func NewExecutor(db DBTX) *Executor {
	return &Executor{db: db}
}

// FetchOne returns the first row produced by query, or nil when there is none.
// An empty result is not an error.
func (e *Executor) FetchOne(ctx context.Context, query string, args ...any) (Row, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		return nil, nil
	}

	row, err := scanRow(rows, cols)
	if err != nil {
		return nil, err
	}

	return row, nil
}

// FetchAll returns every row produced by query. The slice is empty, not nil,
// when nothing matches.
func (e *Executor) FetchAll(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	result := make([]Row, 0)
	for rows.Next() {
		row, err := scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Insert runs an INSERT ... RETURNING <id> statement and returns the
// generated identifier. pgx does not implement LastInsertId, so the id has to
// come back through RETURNING.
func (e *Executor) Insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := e.db.QueryRowContext(ctx, query, args...).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("db error: insert returned no id: %w", err)
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

// Exec runs an UPDATE or DELETE and reports how many rows it touched.
func (e *Executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := e.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func scanRow(rows *sql.Rows, cols []string) (Row, error) {
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}

	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	row := make(Row, len(cols))
	for i, c := range cols {
		// drivers may reuse byte buffers between Next calls
		if b, ok := values[i].([]byte); ok {
			values[i] = append([]byte(nil), b...)
		}
		row[c] = values[i]
	}
	return row, nil
}
