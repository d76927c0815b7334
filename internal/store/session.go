package store

import (
	"context"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

type sessionStore struct {
	db db.DBTX
}

func newSessionStore(conn db.DBTX) SessionStore {
	return &sessionStore{db: conn}
}

func (s *sessionStore) GetValid(ctx context.Context, id int64) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`, id,
	).Scan(&sess.ID, &sess.UserID, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return &sess, nil
}

func (s *sessionStore) Create(ctx context.Context, sess *model.Session) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO sessions (id, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at`, sess.ID, sess.UserID, sess.ExpiresAt,
	).Scan(&sess.CreatedAt)
	return mapErr(err)
}

func (s *sessionStore) DeleteByUser(ctx context.Context, userID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}
