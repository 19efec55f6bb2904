package httpserver

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
)

type fakeUsers struct {
	users  map[string]*models.User
	pw     map[string]string
	nextID int64
	err    error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}, pw: map[string]string{}, nextID: 1}
}

func (f *fakeUsers) Register(ctx context.Context, username, email, password string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	if username == "" || password == "" {
		return 0, common.ErrorValidation
	}
	if _, ok := f.users[username]; ok {
		return 0, common.ErrorAlreadyExists
	}
	u := &models.User{ID: f.nextID, UserName: username, CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	if email != "" {
		u.Email = &email
	}
	f.nextID++
	f.users[username] = u
	f.pw[username] = password
	return u.ID, nil
}

func (f *fakeUsers) Authenticate(ctx context.Context, username, password string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	_, ok := f.users[username]
	if !ok || f.pw[username] != password {
		return "", common.ErrorInvalidCredentials
	}
	return "tok-" + username, nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeTokens maps "tok-<name>" to the id of the registered user.
type fakeTokens struct {
	users *fakeUsers
}

func (f *fakeTokens) Validate(token string) (string, error) {
	switch token {
	case "expired":
		return "", common.ErrTokenExpired
	case "not-a-number":
		return "abc", nil
	}
	for name, u := range f.users.users {
		if token == "tok-"+name {
			return fmtID(u.ID), nil
		}
	}
	return "", common.ErrInvalidToken
}

type fakeTasks struct {
	tasks     map[int64]*models.Task
	nextID    int64
	storageOn bool
	lastPatch models.TaskPatch
	err       error
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{tasks: map[int64]*models.Task{}, nextID: 1}
}

func (f *fakeTasks) owned(owner, id int64) (*models.Task, error) {
	t, ok := f.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTasks) Create(ctx context.Context, owner int64, in models.TaskInput) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	if in.Title == "" {
		return nil, errors.Join(common.ErrorValidation, errors.New("title is required"))
	}
	status := in.Status
	if status == "" {
		status = models.StatusPending
	}
	t := &models.Task{ID: f.nextID, OwnerID: owner, Title: in.Title, Description: in.Description, Status: status}
	f.tasks[t.ID] = t
	f.nextID++
	return t, nil
}

func (f *fakeTasks) List(ctx context.Context, owner int64) ([]*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []*models.Task{}
	for id := int64(1); id < f.nextID; id++ {
		if t, err := f.owned(owner, id); err == nil {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTasks) Get(ctx context.Context, owner, id int64) (*models.Task, error) {
	return f.owned(owner, id)
}

func (f *fakeTasks) Update(ctx context.Context, owner, id int64, p models.TaskPatch) (*models.Task, error) {
	f.lastPatch = p
	t, err := f.owned(owner, id)
	if err != nil {
		return nil, err
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
	return t, nil
}

func (f *fakeTasks) Delete(ctx context.Context, owner, id int64) (bool, error) {
	if _, err := f.owned(owner, id); err != nil {
		return false, nil
	}
	delete(f.tasks, id)
	return true, nil
}

func (f *fakeTasks) AttachmentUploadURL(ctx context.Context, owner, id int64) (string, string, error) {
	if !f.storageOn {
		return "", "", common.ErrorStorageDisabled
	}
	if _, err := f.owned(owner, id); err != nil {
		return "", "", err
	}
	return "tasks/key", "https://s3.test/put", nil
}

func (f *fakeTasks) AttachmentDownloadURL(ctx context.Context, owner, id int64) (string, error) {
	if !f.storageOn {
		return "", common.ErrorStorageDisabled
	}
	if _, err := f.owned(owner, id); err != nil {
		return "", err
	}
	return "https://s3.test/get", nil
}

type fakePinger struct{ err error }

func (p *fakePinger) PingContext(context.Context) error { return p.err }
