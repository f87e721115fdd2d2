// Package services contains server-side business logic. This file implements
// UserService, which handles registration, login and session user lookup.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/photoshare/internal/common"
	"github.com/dmitrijs2005/photoshare/internal/cryptox"
	"github.com/dmitrijs2005/photoshare/internal/logging"
	"github.com/dmitrijs2005/photoshare/internal/server/models"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/photoshare/internal/server/repositories/users"
)

// UserService provides account operations:
// - Register: create users with a hashed password
// - Login: verify credentials
// - GetUserByID: resolve a session's user
type UserService struct {
	users  users.Repository
	logger logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

// NewUserService constructs a UserService over the manager's credential store.
func NewUserService(m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{users: m.Users(), logger: logger.With("module", "users")}
}

// Register creates a new user. Empty fields yield ErrorValidation and a
// taken username yields ErrorAlreadyExists. The name is checked before the
// insert; only the relational and document stores also enforce it on write.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	_, err := s.users.GetUserByLogin(ctx, username)
	switch {
	case err == nil:
		return nil, common.ErrorAlreadyExists
	case !errors.Is(err, common.ErrorNotFound):
		s.logger.Error(ctx, "username lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Create(ctx, &models.User{UserName: username, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login returns the user whose password matches. Unknown usernames and
// wrong passwords both yield ErrorUnauthorized after a hash comparison, so
// neither the result nor the timing tells them apart.
func (s *UserService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetUserByLogin(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.VerifyPassword(s.getDummyHash(), password)
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "user lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !cryptox.VerifyPassword(user.PasswordHash, password) {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// GetUserByID returns ErrorNotFound for unknown ids.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "user lookup failed", "user_id", id, "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		pw, err := common.MakeRandHexString(16)
		if err != nil {
			pw = "dummy"
		}
		s.dummyHash, _ = cryptox.HashPassword(pw)
	})
	return s.dummyHash
}
