package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

const taskColumns = `id, owner_id, title, description, status, completed_at, attachment_key, created_at, updated_at`

type PostgresRepository struct {
	exec *dbx.Executor
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{exec: dbx.NewExecutor(db)}
}

func (r *PostgresRepository) Create(ctx context.Context, ownerID int64, in models.TaskInput) (*models.Task, error) {
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}

	query :=
		`INSERT INTO tasks (owner_id, title, description, status, completed_at)
		 VALUES ($1, $2, $3, $4, CASE WHEN $5::boolean THEN CURRENT_TIMESTAMP END)
		 RETURNING ` + taskColumns

	completed := status == models.StatusCompleted
	row, err := r.exec.FetchOne(ctx, query, ownerID, in.Title, in.Description, status, completed)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, fmt.Errorf("db error: insert returned no row")
	}

	return scanTask(row)
}

func (r *PostgresRepository) List(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE owner_id = $1
		 ORDER BY id
		 `

	rows, err := r.exec.FetchAll(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Task, 0, len(rows))
	for _, row := range rows {
		t, err := scanTask(row)
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}

	return result, nil
}

func (r *PostgresRepository) Get(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	query :=
		`SELECT ` + taskColumns + ` FROM tasks
		 WHERE id = $1 AND owner_id = $2
		 `

	row, err := r.exec.FetchOne(ctx, query, id, ownerID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, common.ErrorNotFound
	}

	return scanTask(row)
}

// Update writes the non-nil fields of patch. Column names come from a fixed
// list; only values travel as bind arguments. Reports false when no owned
// task matched.
func (r *PostgresRepository) Update(ctx context.Context, ownerID, id int64, patch models.TaskPatch) (bool, error) {
	var (
		sets []string
		args []any
	)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if status := patch.EffectiveStatus(); status != nil {
		add("status", *status)
		if *status == models.StatusCompleted {
			// keep the first completion time when completing twice
			sets = append(sets, "completed_at = COALESCE(completed_at, CURRENT_TIMESTAMP)")
		} else {
			sets = append(sets, "completed_at = NULL")
		}
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s
		 WHERE id = $%d AND owner_id = $%d`,
		strings.Join(sets, ", "), len(args)-1, len(args))

	n, err := r.exec.Exec(ctx, query, args...)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	query :=
		`DELETE FROM tasks
		 WHERE id = $1 AND owner_id = $2
		 `

	n, err := r.exec.Exec(ctx, query, id, ownerID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) SetAttachment(ctx context.Context, ownerID, id int64, key string) (bool, error) {
	query :=
		`UPDATE tasks SET attachment_key = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE id = $2 AND owner_id = $3
		 `

	n, err := r.exec.Exec(ctx, query, key, id, ownerID)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanTask(row dbx.Row) (*models.Task, error) {
	var (
		t   models.Task
		err error
	)

	if t.ID, err = row.Int64("id"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.OwnerID, err = row.Int64("owner_id"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.Title, err = row.String("title"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.Description, err = row.String("description"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.Status, err = row.String("status"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.CompletedAt, err = row.NullTime("completed_at"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.AttachmentKey, err = row.NullString("attachment_key"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.CreatedAt, err = row.Time("created_at"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if t.UpdatedAt, err = row.Time("updated_at"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	t.Completed = t.Status == models.StatusCompleted
	t.HasAttachment = t.AttachmentKey != nil

	return &t, nil
}
