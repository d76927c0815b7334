package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"editflow.app/server/common/id"
	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

const (
	InviteTokenLength = 32
	InviteExpiryDays  = 7
)

var (
	ErrInviteNotFound      = errors.New("invitation not found")
	ErrInviteExpired       = errors.New("invitation has expired")
	ErrInviteAlreadyUsed   = errors.New("invitation has already been answered")
	ErrInviteRevoked       = errors.New("invitation has been revoked")
	ErrInviteNotForUser    = errors.New("invitation was sent to another user")
	ErrInvitePendingExists = errors.New("a pending invitation already exists for this user")
	ErrSelfInvite          = errors.New("cannot invite yourself")
	ErrAlreadyCollaborator = errors.New("user already has access to this document")
)

type InvitationService interface {
	Invite(ctx context.Context, documentID, inviterID int64, inviteeUsername string) (*model.Invitation, error)
	ListPendingForUser(ctx context.Context, userID int64) ([]model.Invitation, error)
	ListForDocument(ctx context.Context, documentID, ownerID int64) ([]model.Invitation, error)
	Accept(ctx context.Context, token string, userID int64) (*model.Invitation, error)
	// Decline answers the invitation and charges the inviter the decline
	// penalty, or whatever is left of their balance.
	Decline(ctx context.Context, token string, userID int64) (*model.Invitation, error)
	Revoke(ctx context.Context, invitationID, ownerID int64) (*model.Invitation, error)
}

type invitationService struct {
	txRunner       TxRunner
	invStore       store.InvitationStore
	docStore       store.DocumentStore
	userStore      store.UserStore
	declinePenalty int64
}

func NewInvitationService(
	txRunner TxRunner,
	invStore store.InvitationStore,
	docStore store.DocumentStore,
	userStore store.UserStore,
	declinePenalty int64,
) InvitationService {
	return &invitationService{
		txRunner:       txRunner,
		invStore:       invStore,
		docStore:       docStore,
		userStore:      userStore,
		declinePenalty: max(declinePenalty, 0),
	}
}

func (s *invitationService) Invite(ctx context.Context, documentID, inviterID int64, inviteeUsername string) (*model.Invitation, error) {
	doc, err := s.ownedDocument(ctx, documentID, inviterID)
	if err != nil {
		return nil, err
	}

	invitee, err := s.userStore.GetByUsername(ctx, strings.TrimSpace(inviteeUsername))
	if err != nil {
		return nil, mapUserErr(err)
	}
	if invitee.ID == inviterID {
		return nil, ErrSelfInvite
	}

	hasAccess, err := s.docStore.HasAccess(ctx, doc.ID, invitee.ID)
	if err != nil {
		return nil, fmt.Errorf("checking document access: %w", err)
	}
	if hasAccess {
		return nil, ErrAlreadyCollaborator
	}

	existing, err := s.invStore.GetPending(ctx, doc.ID, invitee.ID)
	if err == nil && existing.IsValid() {
		return nil, ErrInvitePendingExists
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("checking pending invitations: %w", err)
	}
	if existing != nil {
		// A stale pending row would trip the unique index.
		if _, err := s.invStore.Transition(ctx, existing.ID, model.InvitationStatusExpired); err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("expiring stale invitation: %w", err)
		}
	}

	token, err := generateSecureToken(InviteTokenLength)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}

	inv := &model.Invitation{
		ID:         id.New(),
		DocumentID: doc.ID,
		InviterID:  inviterID,
		InviteeID:  invitee.ID,
		Token:      token,
		Status:     model.InvitationStatusPending,
		ExpiresAt:  time.Now().Add(InviteExpiryDays * 24 * time.Hour),
	}

	if err := s.invStore.Create(ctx, inv); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrInvitePendingExists
		}
		return nil, fmt.Errorf("creating invitation: %w", err)
	}

	slog.InfoContext(ctx, "invitation created",
		"invitation_id", inv.ID,
		"document_id", doc.ID,
		"invitee_id", invitee.ID,
		"expires_at", inv.ExpiresAt,
	)

	return inv, nil
}

func (s *invitationService) ListPendingForUser(ctx context.Context, userID int64) ([]model.Invitation, error) {
	if err := s.invStore.ExpireOld(ctx); err != nil {
		slog.WarnContext(ctx, "failed to expire old invitations", "error", err)
	}
	return s.invStore.ListPendingForUser(ctx, userID)
}

func (s *invitationService) ListForDocument(ctx context.Context, documentID, ownerID int64) ([]model.Invitation, error) {
	if _, err := s.ownedDocument(ctx, documentID, ownerID); err != nil {
		return nil, err
	}
	return s.invStore.ListByDocument(ctx, documentID)
}

func (s *invitationService) Accept(ctx context.Context, token string, userID int64) (*model.Invitation, error) {
	inv, err := s.validateForInvitee(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	var accepted *model.Invitation
	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		accepted, err = sp.Invitations().Transition(ctx, inv.ID, model.InvitationStatusAccepted)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteAlreadyUsed
			}
			return fmt.Errorf("accepting invitation: %w", err)
		}
		if err := sp.Documents().GrantAccess(ctx, inv.DocumentID, userID); err != nil {
			return fmt.Errorf("granting document access: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invitation accepted",
		"invitation_id", inv.ID,
		"document_id", inv.DocumentID,
		"user_id", userID,
	)

	return accepted, nil
}

func (s *invitationService) Decline(ctx context.Context, token string, userID int64) (*model.Invitation, error) {
	inv, err := s.validateForInvitee(ctx, token, userID)
	if err != nil {
		return nil, err
	}

	var (
		declined *model.Invitation
		charged  int64
	)
	err = s.txRunner.WithTx(ctx, func(sp StoreProvider) error {
		var err error
		declined, err = sp.Invitations().Transition(ctx, inv.ID, model.InvitationStatusDeclined)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInviteAlreadyUsed
			}
			return fmt.Errorf("declining invitation: %w", err)
		}
		_, charged, err = adjustBalance(ctx, sp.Tokens(), inv.InviterID, -s.declinePenalty, model.TokenReasonInviteDeclined, true)
		if err != nil {
			return fmt.Errorf("charging decline penalty: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "invitation declined",
		"invitation_id", inv.ID,
		"inviter_id", inv.InviterID,
		"penalty", -charged,
	)

	return declined, nil
}

func (s *invitationService) Revoke(ctx context.Context, invitationID, ownerID int64) (*model.Invitation, error) {
	inv, err := s.invStore.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("getting invitation: %w", err)
	}
	if inv.InviterID != ownerID {
		return nil, ErrNotDocumentOwner
	}

	revoked, err := s.invStore.Transition(ctx, invitationID, model.InvitationStatusRevoked)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteAlreadyUsed
		}
		return nil, fmt.Errorf("revoking invitation: %w", err)
	}

	slog.InfoContext(ctx, "invitation revoked", "invitation_id", invitationID)
	return revoked, nil
}

func (s *invitationService) ownedDocument(ctx context.Context, documentID, ownerID int64) (*model.Document, error) {
	doc, err := s.docStore.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("getting document: %w", err)
	}
	if doc.OwnerID != ownerID {
		return nil, ErrNotDocumentOwner
	}
	return doc, nil
}

func (s *invitationService) validateForInvitee(ctx context.Context, token string, userID int64) (*model.Invitation, error) {
	inv, err := s.invStore.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("getting invitation: %w", err)
	}

	if inv.InviteeID != userID {
		slog.WarnContext(ctx, "invitation answered by another user",
			"invitation_id", inv.ID,
			"user_id", userID,
		)
		return nil, ErrInviteNotForUser
	}

	switch inv.Status {
	case model.InvitationStatusAccepted, model.InvitationStatusDeclined:
		return nil, ErrInviteAlreadyUsed
	case model.InvitationStatusRevoked:
		return nil, ErrInviteRevoked
	case model.InvitationStatusExpired:
		return nil, ErrInviteExpired
	}

	if time.Now().After(inv.ExpiresAt) {
		if _, err := s.invStore.Transition(ctx, inv.ID, model.InvitationStatusExpired); err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.WarnContext(ctx, "failed to mark invitation expired", "error", err, "invitation_id", inv.ID)
		}
		return nil, ErrInviteExpired
	}

	return inv, nil
}

func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(bytes), nil
}
