package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserSvc(t *testing.T) (*UserService, *fakeUsersRepo, *fakeHasher, *fakeIssuer) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	ur := newFakeUsersRepo()
	h := &fakeHasher{}
	iss := &fakeIssuer{}
	return NewUserService(db, &fakeRepoManager{u: ur}, h, iss), ur, h, iss
}

func TestRegister_Success(t *testing.T) {
	s, ur, _, _ := newUserSvc(t)

	id, err := s.Register(context.Background(), "alice", "alice@example.com", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	require.Len(t, ur.created, 1)
	u := ur.created[0]
	assert.Equal(t, "hashed:s3cret", u.PasswordHash, "password must be stored hashed")
	require.NotNil(t, u.Email)
	assert.Equal(t, "alice@example.com", *u.Email)
}

func TestRegister_EmailOptional(t *testing.T) {
	s, ur, _, _ := newUserSvc(t)

	_, err := s.Register(context.Background(), "bob", "", "pw")
	require.NoError(t, err)
	assert.Nil(t, ur.created[0].Email)
}

func TestRegister_Duplicate(t *testing.T) {
	s, ur, _, _ := newUserSvc(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "a@example.com", "pw")
	require.NoError(t, err)

	_, err = s.Register(ctx, "alice", "", "other")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	_, err = s.Register(ctx, "alice2", "a@example.com", "pw")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	assert.Len(t, ur.created, 1, "no second row on duplicate")
}

func TestRegister_Validation(t *testing.T) {
	cases := []struct {
		name, username, email, password string
	}{
		{"empty username", "", "", "pw"},
		{"blank username", "   ", "", "pw"},
		{"long username", strings.Repeat("u", 51), "", "pw"},
		{"bad email", "alice", "not-an-email", "pw"},
		{"display name email", "alice", "Alice <a@example.com>", "pw"},
		{"long email", "alice", strings.Repeat("a", 95) + "@x.com", "pw"},
		{"empty password", "alice", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, ur, _, _ := newUserSvc(t)
			_, err := s.Register(context.Background(), tc.username, tc.email, tc.password)
			assert.ErrorIs(t, err, common.ErrorValidation)
			assert.Empty(t, ur.created)
		})
	}
}

func TestRegister_BoundaryLengths(t *testing.T) {
	s, _, _, _ := newUserSvc(t)

	_, err := s.Register(context.Background(), strings.Repeat("u", 50), "", "pw")
	assert.NoError(t, err)
}

func TestRegister_HashError(t *testing.T) {
	s, ur, h, _ := newUserSvc(t)
	h.hashErr = common.ErrorValidation

	_, err := s.Register(context.Background(), "alice", "", "pw")
	assert.ErrorIs(t, err, common.ErrorValidation)
	assert.Empty(t, ur.created)
}

func TestRegister_StoreError(t *testing.T) {
	s, ur, _, _ := newUserSvc(t)
	ur.err = errBoom{}

	_, err := s.Register(context.Background(), "alice", "", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorAlreadyExists))
	assert.Contains(t, err.Error(), "boom")
}

func TestAuthenticate_Success(t *testing.T) {
	s, _, _, iss := newUserSvc(t)
	ctx := context.Background()

	id, err := s.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	tok, err := s.Authenticate(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, "token-for-1", tok)
	assert.Equal(t, "1", iss.subject)
	assert.Equal(t, int64(1), id)
}

func TestAuthenticate_WrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	s, _, h, _ := newUserSvc(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	h.verifyCalls = 0
	_, errWrong := s.Authenticate(ctx, "alice", "nope")
	_, errUnknown := s.Authenticate(ctx, "ghost", "pw")

	assert.ErrorIs(t, errWrong, common.ErrorInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrorInvalidCredentials)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
	assert.Equal(t, 2, h.verifyCalls, "unknown user still runs a hash comparison")
}

func TestNewUserService_DummyHashFallback(t *testing.T) {
	db, _ := newSQLMockDB(t)
	h := &fakeHasher{hashErr: errBoom{}}

	s := NewUserService(db, &fakeRepoManager{u: newFakeUsersRepo()}, h, &fakeIssuer{})
	assert.Equal(t, fallbackDummyHash, s.dummyHash)

	cost, err := bcrypt.Cost([]byte(fallbackDummyHash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
	assert.True(t, auth.NewBcryptHasher(bcrypt.MinCost).Verify(dummyPassword, fallbackDummyHash))

	_, err = s.Authenticate(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, common.ErrorInvalidCredentials)
	assert.Equal(t, 1, h.verifyCalls)
}

func TestAuthenticate_StoreError(t *testing.T) {
	s, ur, _, _ := newUserSvc(t)
	ur.err = errBoom{}

	_, err := s.Authenticate(context.Background(), "alice", "pw")
	require.Error(t, err)
	assert.False(t, errors.Is(err, common.ErrorInvalidCredentials))
}

func TestAuthenticate_IssueError(t *testing.T) {
	s, _, _, iss := newUserSvc(t)
	ctx := context.Background()

	_, err := s.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	iss.err = errBoom{}
	_, err = s.Authenticate(ctx, "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestGetByID(t *testing.T) {
	s, _, _, _ := newUserSvc(t)
	ctx := context.Background()

	id, err := s.Register(ctx, "alice", "", "pw")
	require.NoError(t, err)

	u, err := s.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)

	_, err = s.GetByID(ctx, 99)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
