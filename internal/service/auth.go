package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrSessionExpired = errors.New("session expired")
	ErrUserSuspended  = errors.New("user is suspended")
)

// AuthService validates login sessions. Sessions are issued by the external
// auth provider; this server never creates them.
type AuthService interface {
	ValidateSession(ctx context.Context, sessionID int64) (*model.User, error)
}

type authService struct {
	userStore    store.UserStore
	sessionStore store.SessionStore
}

func NewAuthService(userStore store.UserStore, sessionStore store.SessionStore) AuthService {
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
	}
}

func (s *authService) ValidateSession(ctx context.Context, sessionID int64) (*model.User, error) {
	session, err := s.sessionStore.GetValid(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}

	user, err := s.userStore.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "session references missing user",
				"session_id", sessionID,
				"user_id", session.UserID)
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("getting user: %w", err)
	}

	if user.Suspended {
		return nil, ErrUserSuspended
	}

	return user, nil
}
