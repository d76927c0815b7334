package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"editflow.app/server/common/id"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

var (
	ErrUserExists      = errors.New("username or email already registered")
	ErrInvalidUsername = errors.New("username must not be blank")
	ErrInvalidRole     = errors.New("unknown role")
)

type UserService interface {
	Create(ctx context.Context, username, email string) (*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	List(ctx context.Context, limit, offset int32) ([]model.User, error)
}

type userService struct {
	userStore store.UserStore
}

func NewUserService(userStore store.UserStore) UserService {
	return &userService{userStore: userStore}
}

// Create registers a user the external auth provider has already
// authenticated. New users start on the free tier with no tokens.
func (s *userService) Create(ctx context.Context, username, email string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidUsername
	}

	user := &model.User{
		ID:       id.New(),
		Username: username,
		Email:    strings.ToLower(strings.TrimSpace(email)),
		Role:     model.RoleFree,
	}

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrUserExists
		}
		slog.ErrorContext(ctx, "failed to create user",
			"error", err,
			"username", username,
		)
		return nil, fmt.Errorf("creating user: %w", err)
	}

	slog.InfoContext(ctx, "user created", "user_id", user.ID)
	return user, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, limit, offset int32) ([]model.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.userStore.List(ctx, limit, max(offset, 0))
}
