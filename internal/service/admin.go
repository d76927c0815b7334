package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

var ErrCannotModifySelf = errors.New("superusers cannot change their own account")

// AdminService holds the superuser-only account operations.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int32) ([]model.User, error)
	SetRole(ctx context.Context, actorID, userID int64, role model.Role) (*model.User, error)
	SetSuspended(ctx context.Context, actorID, userID int64, suspended bool) (*model.User, error)
	DeleteUser(ctx context.Context, actorID, userID int64) error
}

type adminService struct {
	txRunner  TxRunner
	userStore store.UserStore
}

func NewAdminService(txRunner TxRunner, userStore store.UserStore) AdminService {
	return &adminService{
		txRunner:  txRunner,
		userStore: userStore,
	}
}

func (s *adminService) ListUsers(ctx context.Context, limit, offset int32) ([]model.User, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.userStore.List(ctx, limit, max(offset, 0))
}

func (s *adminService) SetRole(ctx context.Context, actorID, userID int64, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if actorID == userID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.userStore.SetRole(ctx, userID, role)
	if err != nil {
		return nil, mapUserErr(err)
	}

	slog.InfoContext(ctx, "user role changed",
		"actor_id", actorID,
		"user_id", userID,
		"role", role)
	return user, nil
}

func (s *adminService) SetSuspended(ctx context.Context, actorID, userID int64, suspended bool) (*model.User, error) {
	if actorID == userID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.userStore.SetSuspended(ctx, userID, suspended)
	if err != nil {
		return nil, mapUserErr(err)
	}

	slog.InfoContext(ctx, "user suspension changed",
		"actor_id", actorID,
		"user_id", userID,
		"suspended", suspended)
	return user, nil
}

// DeleteUser removes the user's collaborator grants, owned documents and
// account in one transaction.
func (s *adminService) DeleteUser(ctx context.Context, actorID, userID int64) error {
	if actorID == userID {
		return ErrCannotModifySelf
	}

	err := s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		if err := sp.Documents().RevokeAllAccess(ctx, userID); err != nil {
			return fmt.Errorf("revoking document access: %w", err)
		}
		if err := sp.Documents().DeleteByOwner(ctx, userID); err != nil {
			return fmt.Errorf("deleting documents: %w", err)
		}
		if err := sp.Sessions().DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("deleting sessions: %w", err)
		}
		if err := sp.Users().Delete(ctx, userID); err != nil {
			return mapUserErr(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "user deleted", "actor_id", actorID, "user_id", userID)
	return nil
}
