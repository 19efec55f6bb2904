package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

const maxTitleLength = 100

// ObjectStorage hands out presigned URLs for attachment objects.
type ObjectStorage interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

type TaskService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	storage     ObjectStorage
}

// NewTaskService builds the service. storage may be nil, in which case the
// attachment operations return common.ErrorStorageDisabled.
func NewTaskService(db *sql.DB, m repomanager.RepositoryManager, storage ObjectStorage) *TaskService {
	return &TaskService{db: db, repomanager: m, storage: storage}
}

func attachmentKey(ownerID, taskID int64) string {
	return fmt.Sprintf("tasks/%d/%d/%v", ownerID, taskID, uuid.New())
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, in models.TaskInput) (*models.Task, error) {
	if err := validateTitle(in.Title); err != nil {
		return nil, err
	}
	if in.Status != "" && !models.ValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorValidation, in.Status)
	}

	task, err := s.repomanager.Tasks(s.db).Create(ctx, ownerID, in)
	if err != nil {
		return nil, fmt.Errorf("error creating task: %w", err)
	}
	return task, nil
}

func (s *TaskService) List(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	return s.repomanager.Tasks(s.db).List(ctx, ownerID)
}

func (s *TaskService) Get(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	return s.repomanager.Tasks(s.db).Get(ctx, ownerID, id)
}

// Update applies patch and returns the task as stored afterwards. The write
// and the read-back share one transaction.
func (s *TaskService) Update(ctx context.Context, ownerID, id int64, patch models.TaskPatch) (*models.Task, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Status != nil && !models.ValidStatus(*patch.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", common.ErrorValidation, *patch.Status)
	}
	if patch.Empty() {
		return s.Get(ctx, ownerID, id)
	}

	var task *models.Task
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Tasks(tx)

		ok, err := repo.Update(ctx, ownerID, id, patch)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrorNotFound
		}

		task, err = repo.Get(ctx, ownerID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	return s.repomanager.Tasks(s.db).Delete(ctx, ownerID, id)
}

// AttachmentUploadURL assigns a fresh object key to the task and returns it
// with a presigned PUT URL. A previous attachment is replaced.
func (s *TaskService) AttachmentUploadURL(ctx context.Context, ownerID, id int64) (string, string, error) {
	if s.storage == nil {
		return "", "", common.ErrorStorageDisabled
	}

	repo := s.repomanager.Tasks(s.db)
	if _, err := repo.Get(ctx, ownerID, id); err != nil {
		return "", "", err
	}

	key := attachmentKey(ownerID, id)
	url, err := s.storage.PresignPut(ctx, key)
	if err != nil {
		return "", "", err
	}

	ok, err := repo.SetAttachment(ctx, ownerID, id, key)
	if err != nil {
		return "", "", err
	}
	if !ok {
		return "", "", common.ErrorNotFound
	}

	return key, url, nil
}

// AttachmentDownloadURL returns a presigned GET URL for the task's attachment,
// or common.ErrorNotFound when the task has none.
func (s *TaskService) AttachmentDownloadURL(ctx context.Context, ownerID, id int64) (string, error) {
	if s.storage == nil {
		return "", common.ErrorStorageDisabled
	}

	task, err := s.repomanager.Tasks(s.db).Get(ctx, ownerID, id)
	if err != nil {
		return "", err
	}
	if task.AttachmentKey == nil {
		return "", fmt.Errorf("%w: task has no attachment", common.ErrorNotFound)
	}

	return s.storage.PresignGet(ctx, *task.AttachmentKey)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", common.ErrorValidation, maxTitleLength)
	}
	return nil
}
