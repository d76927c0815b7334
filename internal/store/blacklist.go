package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

const blacklistRequestColumns = `id, user_id, word, status, decided_at, created_at`

type blacklistStore struct {
	db db.DBTX
}

func newBlacklistStore(conn db.DBTX) BlacklistStore {
	return &blacklistStore{db: conn}
}

func (s *blacklistStore) ListWords(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT word FROM blacklist_words ORDER BY word`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *blacklistStore) HasWord(ctx context.Context, word string) (bool, error) {
	var ok bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM blacklist_words WHERE word = $1)`, word).Scan(&ok)
	return ok, err
}

func (s *blacklistStore) AddWord(ctx context.Context, word string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO blacklist_words (word) VALUES ($1)
		ON CONFLICT (word) DO NOTHING`, word)
	return err
}

func (s *blacklistStore) RemoveWord(ctx context.Context, word string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM blacklist_words WHERE word = $1`, word)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *blacklistStore) CreateRequest(ctx context.Context, req *model.BlacklistRequest) error {
	created, err := s.getOne(ctx, `
		INSERT INTO blacklist_requests (id, user_id, word, status)
		VALUES ($1, $2, $3, 'pending')
		RETURNING `+blacklistRequestColumns, req.ID, req.UserID, req.Word)
	if err != nil {
		return err
	}
	*req = *created
	return nil
}

func (s *blacklistStore) GetRequest(ctx context.Context, id int64) (*model.BlacklistRequest, error) {
	return s.getOne(ctx, `SELECT `+blacklistRequestColumns+` FROM blacklist_requests WHERE id = $1`, id)
}

func (s *blacklistStore) ListPendingRequests(ctx context.Context) ([]model.BlacklistRequest, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+blacklistRequestColumns+`
		FROM blacklist_requests
		WHERE status = 'pending'
		ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanBlacklistRequest)
}

func (s *blacklistStore) DecideRequest(ctx context.Context, id int64, status model.BlacklistRequestStatus) (*model.BlacklistRequest, error) {
	return s.getOne(ctx, `
		UPDATE blacklist_requests
		SET status = $2, decided_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+blacklistRequestColumns, id, string(status))
}

func (s *blacklistStore) getOne(ctx context.Context, query string, args ...any) (*model.BlacklistRequest, error) {
	req, err := scanBlacklistRequest(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return req, nil
}

func scanBlacklistRequest(row pgx.Row) (*model.BlacklistRequest, error) {
	var r model.BlacklistRequest
	var status string
	if err := row.Scan(&r.ID, &r.UserID, &r.Word, &status, &r.DecidedAt, &r.CreatedAt); err != nil {
		return nil, err
	}
	r.Status = model.BlacklistRequestStatus(status)
	return &r, nil
}
