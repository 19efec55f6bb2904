// Package httpserver is the JSON API of the task service: routing, request
// decoding, authentication middleware and error mapping.
package httpserver

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type UserService interface {
	Register(ctx context.Context, username, email, password string) (int64, error)
	Authenticate(ctx context.Context, username, password string) (string, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type TaskService interface {
	Create(ctx context.Context, ownerID int64, in models.TaskInput) (*models.Task, error)
	List(ctx context.Context, ownerID int64) ([]*models.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch models.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, ownerID, id int64) (bool, error)
	AttachmentUploadURL(ctx context.Context, ownerID, id int64) (string, string, error)
	AttachmentDownloadURL(ctx context.Context, ownerID, id int64) (string, error)
}

type TokenValidator interface {
	Validate(token string) (string, error)
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type API struct {
	users  UserService
	tasks  TaskService
	tokens TokenValidator
	db     Pinger
	logger logging.Logger
}

func NewAPI(users UserService, tasks TaskService, tokens TokenValidator, db Pinger, l logging.Logger) *API {
	return &API{
		users:  users,
		tasks:  tasks,
		tokens: tokens,
		db:     db,
		logger: l.With("module", "http_api"),
	}
}
