package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

const invitationColumns = `id, document_id, inviter_id, invitee_id, token, status, expires_at, created_at, responded_at`

type invitationStore struct {
	db db.DBTX
}

func newInvitationStore(conn db.DBTX) InvitationStore {
	return &invitationStore{db: conn}
}

func (s *invitationStore) Create(ctx context.Context, inv *model.Invitation) error {
	row := s.db.QueryRow(ctx, `
		INSERT INTO document_invitations (id, document_id, inviter_id, invitee_id, token, status, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+invitationColumns,
		inv.ID, inv.DocumentID, inv.InviterID, inv.InviteeID, inv.Token, string(inv.Status), inv.ExpiresAt)
	created, err := scanInvitation(row)
	if err != nil {
		return mapErr(err)
	}
	*inv = *created
	return nil
}

func (s *invitationStore) GetByID(ctx context.Context, id int64) (*model.Invitation, error) {
	return s.getOne(ctx, `SELECT `+invitationColumns+` FROM document_invitations WHERE id = $1`, id)
}

func (s *invitationStore) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return s.getOne(ctx, `SELECT `+invitationColumns+` FROM document_invitations WHERE token = $1`, token)
}

func (s *invitationStore) GetPending(ctx context.Context, documentID, inviteeID int64) (*model.Invitation, error) {
	return s.getOne(ctx, `
		SELECT `+invitationColumns+`
		FROM document_invitations
		WHERE document_id = $1 AND invitee_id = $2 AND status = 'pending' AND expires_at > now()`,
		documentID, inviteeID)
}

func (s *invitationStore) ListPendingForUser(ctx context.Context, inviteeID int64) ([]model.Invitation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM document_invitations
		WHERE invitee_id = $1 AND status = 'pending' AND expires_at > now()
		ORDER BY created_at DESC`, inviteeID)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanInvitation)
}

func (s *invitationStore) ListByDocument(ctx context.Context, documentID int64) ([]model.Invitation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+invitationColumns+`
		FROM document_invitations
		WHERE document_id = $1
		ORDER BY created_at DESC`, documentID)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanInvitation)
}

func (s *invitationStore) Transition(ctx context.Context, id int64, status model.InvitationStatus) (*model.Invitation, error) {
	return s.getOne(ctx, `
		UPDATE document_invitations
		SET status = $2, responded_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+invitationColumns, id, string(status))
}

func (s *invitationStore) ExpireOld(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		UPDATE document_invitations SET status = 'expired'
		WHERE status = 'pending' AND expires_at <= now()`)
	return err
}

func (s *invitationStore) getOne(ctx context.Context, query string, args ...any) (*model.Invitation, error) {
	inv, err := scanInvitation(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return inv, nil
}

func scanInvitation(row pgx.Row) (*model.Invitation, error) {
	var inv model.Invitation
	var status string
	if err := row.Scan(&inv.ID, &inv.DocumentID, &inv.InviterID, &inv.InviteeID, &inv.Token,
		&status, &inv.ExpiresAt, &inv.CreatedAt, &inv.RespondedAt); err != nil {
		return nil, err
	}
	inv.Status = model.InvitationStatus(status)
	return &inv, nil
}
