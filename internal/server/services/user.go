// Package services contains server-side business logic. UserService handles
// registration, credential checks and token issuing; TaskService handles
// owner-scoped task CRUD and attachments.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
)

const (
	maxUserNameLength = 50
	maxEmailLength    = 100
)

// TokenIssuer mints an access token for a subject.
type TokenIssuer interface {
	Issue(subject string) (string, error)
}

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      auth.PasswordHasher
	tokens      TokenIssuer
	dummyHash   string
}

const dummyPassword = "taskkeeper-dummy-password"

// fallbackDummyHash is bcrypt(dummyPassword) at cost 10.
const fallbackDummyHash = "$2b$10$h8HlZ4UHJeixeWDI3IsonuYR7YfP8ectsaemQx/AFGzMxt2oXKwby"

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher auth.PasswordHasher, tokens TokenIssuer) *UserService {
	// Compared against when the username is unknown, so both login failure
	// paths run one bcrypt verification.
	dummy, err := hasher.Hash(dummyPassword)
	if err != nil {
		dummy = fallbackDummyHash
	}

	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		dummyHash:   dummy,
	}
}

// Register validates the input, stores a new user with a hashed password and
// returns its id. A taken username or email yields common.ErrorAlreadyExists.
func (s *UserService) Register(ctx context.Context, username, email, password string) (int64, error) {
	if err := validateRegistration(username, email, password); err != nil {
		return 0, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	user := &models.User{UserName: username, PasswordHash: hash}
	if email != "" {
		user.Email = &email
	}

	id, err := s.repomanager.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return 0, fmt.Errorf("%w: username or email already registered", common.ErrorAlreadyExists)
		}
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return id, nil
}

// Authenticate checks the credentials and returns an access token whose
// subject is the user id. Unknown user and wrong password are reported the
// same way.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			return "", common.ErrorInvalidCredentials
		}
		return "", fmt.Errorf("error fetching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrorInvalidCredentials
	}

	token, err := s.tokens.Issue(strconv.FormatInt(user.ID, 10))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return token, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, id)
}

func validateRegistration(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username is required", common.ErrorValidation)
	}
	if utf8.RuneCountInString(username) > maxUserNameLength {
		return fmt.Errorf("%w: username must be at most %d characters", common.ErrorValidation, maxUserNameLength)
	}

	if email != "" {
		if utf8.RuneCountInString(email) > maxEmailLength {
			return fmt.Errorf("%w: email must be at most %d characters", common.ErrorValidation, maxEmailLength)
		}
		addr, err := mail.ParseAddress(email)
		if err != nil || addr.Address != email {
			return fmt.Errorf("%w: email is not a valid address", common.ErrorValidation)
		}
	}

	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	return nil
}
