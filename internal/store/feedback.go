package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

type feedbackStore struct {
	db db.DBTX
}

func newFeedbackStore(conn db.DBTX) FeedbackStore {
	return &feedbackStore{db: conn}
}

func (s *feedbackStore) Create(ctx context.Context, fb *model.CorrectionFeedback) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO correction_feedback (id, user_id, editing_session_id, original, correction, reason)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		fb.ID, fb.UserID, fb.EditingSessionID, fb.Original, fb.Correction, fb.Reason,
	).Scan(&fb.CreatedAt)
	return mapErr(err)
}

func (s *feedbackStore) ListByUser(ctx context.Context, userID int64, limit int32) ([]model.CorrectionFeedback, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, editing_session_id, original, correction, reason, created_at
		FROM correction_feedback
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, func(row pgx.Row) (*model.CorrectionFeedback, error) {
		var fb model.CorrectionFeedback
		if err := row.Scan(&fb.ID, &fb.UserID, &fb.EditingSessionID, &fb.Original, &fb.Correction, &fb.Reason, &fb.CreatedAt); err != nil {
			return nil, err
		}
		return &fb, nil
	})
}
