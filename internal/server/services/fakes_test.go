package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// fakeHasher prefixes the password; verifyCalls counts comparisons.
type fakeHasher struct {
	hashErr     error
	verifyCalls int
}

func (h *fakeHasher) Hash(p string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + p, nil
}

func (h *fakeHasher) Verify(p, hash string) bool {
	h.verifyCalls++
	return hash == "hashed:"+p
}

type fakeIssuer struct {
	subject string
	err     error
}

func (f *fakeIssuer) Issue(subject string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.subject = subject
	return "token-for-" + subject, nil
}

type fakeUsersRepo struct {
	byName  map[string]*models.User
	nextID  int64
	created []*models.User
	err     error
}

func newFakeUsersRepo() *fakeUsersRepo {
	return &fakeUsersRepo{byName: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.byName[u.UserName]; ok {
		return 0, common.ErrorAlreadyExists
	}
	for _, existing := range f.byName {
		if u.Email != nil && existing.Email != nil && *u.Email == *existing.Email {
			return 0, common.ErrorAlreadyExists
		}
	}
	u.ID = f.nextID
	f.nextID++
	f.byName[u.UserName] = u
	f.created = append(f.created, u)
	return u.ID, nil
}

func (f *fakeUsersRepo) GetByUsername(ctx context.Context, name string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byName[name]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeTasksRepo is an in-memory, owner-scoped task store.
type fakeTasksRepo struct {
	tasks  map[int64]*models.Task
	nextID int64
	err    error
}

func newFakeTasksRepo() *fakeTasksRepo {
	return &fakeTasksRepo{tasks: map[int64]*models.Task{}, nextID: 1}
}

func (f *fakeTasksRepo) owned(ownerID, id int64) (*models.Task, bool) {
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != ownerID {
		return nil, false
	}
	return t, true
}

func (f *fakeTasksRepo) Create(ctx context.Context, ownerID int64, in models.TaskInput) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	t := &models.Task{ID: f.nextID, OwnerID: ownerID, Title: in.Title, Description: in.Description, Status: status}
	f.tasks[t.ID] = t
	f.nextID++
	cp := *t
	return &cp, nil
}

func (f *fakeTasksRepo) List(ctx context.Context, ownerID int64) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Task{}
	for id := int64(1); id < f.nextID; id++ {
		if t, ok := f.owned(ownerID, id); ok {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeTasksRepo) Get(ctx context.Context, ownerID, id int64) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.owned(ownerID, id)
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTasksRepo) Update(ctx context.Context, ownerID, id int64, p models.TaskPatch) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	t, ok := f.owned(ownerID, id)
	if !ok {
		return false, nil
	}
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if s := p.EffectiveStatus(); s != nil {
		t.Status = *s
		t.Completed = *s == models.StatusCompleted
	}
	return true, nil
}

func (f *fakeTasksRepo) Delete(ctx context.Context, ownerID, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.owned(ownerID, id); !ok {
		return false, nil
	}
	delete(f.tasks, id)
	return true, nil
}

func (f *fakeTasksRepo) SetAttachment(ctx context.Context, ownerID, id int64, key string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	t, ok := f.owned(ownerID, id)
	if !ok {
		return false, nil
	}
	t.AttachmentKey = &key
	t.HasAttachment = true
	return true, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	t *fakeTasksRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository          { return m.u }
func (m *fakeRepoManager) Tasks(db dbx.DBTX) tasks.Repository          { return m.t }

type fakeStorage struct {
	err error
}

func (f *fakeStorage) PresignPut(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/put/" + key, nil
}

func (f *fakeStorage) PresignGet(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "https://s3.test/get/" + key, nil
}

var errStorage = errors.New("storage down")
