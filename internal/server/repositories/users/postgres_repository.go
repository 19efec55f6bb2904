package users

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type PostgresRepository struct {
	exec *dbx.Executor
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{exec: dbx.NewExecutor(db)}
}

// Create stores the user and returns the generated id. A taken username or
// email yields common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	query :=
		`INSERT INTO users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id
		 `

	id, err := r.exec.Insert(ctx, query, user.UserName, user.Email, user.PasswordHash)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.ErrorAlreadyExists
		}
		return 0, err
	}

	user.ID = id
	return id, nil
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE username = $1
		 `

	return r.fetchOne(ctx, query, username)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, username, email, password_hash, created_at FROM users
		 WHERE id = $1
		 `

	return r.fetchOne(ctx, query, id)
}

func (r *PostgresRepository) fetchOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	row, err := r.exec.FetchOne(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, common.ErrorNotFound
	}

	return scanUser(row)
}

func scanUser(row dbx.Row) (*models.User, error) {
	var (
		u   models.User
		err error
	)

	if u.ID, err = row.Int64("id"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if u.UserName, err = row.String("username"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if u.Email, err = row.NullString("email"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if u.PasswordHash, err = row.String("password_hash"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if u.CreatedAt, err = row.Time("created_at"); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return &u, nil
}
