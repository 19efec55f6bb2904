package tasks

import (
	"context"

	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

// Repository scopes every statement to an owner: a task that belongs to
// someone else behaves exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, ownerID int64, in models.TaskInput) (*models.Task, error)
	List(ctx context.Context, ownerID int64) ([]*models.Task, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Task, error)
	Update(ctx context.Context, ownerID, id int64, patch models.TaskPatch) (bool, error)
	Delete(ctx context.Context, ownerID, id int64) (bool, error)
	SetAttachment(ctx context.Context, ownerID, id int64, key string) (bool, error)
}
