package store

import (
	"context"
	"errors"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

type statsStore struct {
	db db.DBTX
}

func newStatsStore(conn db.DBTX) StatsStore {
	return &statsStore{db: conn}
}

// Get returns zeroed counters for a user with no activity yet.
func (s *statsStore) Get(ctx context.Context, userID int64) (*model.UserStats, error) {
	st := model.UserStats{UserID: userID}
	err := s.db.QueryRow(ctx, `
		SELECT edited_texts, used_tokens, corrections, updated_at
		FROM user_stats WHERE user_id = $1`, userID,
	).Scan(&st.EditedTexts, &st.UsedTokens, &st.Corrections, &st.UpdatedAt)
	if err != nil {
		if errors.Is(mapErr(err), ErrNotFound) {
			return &st, nil
		}
		return nil, err
	}
	return &st, nil
}

func (s *statsStore) Increment(ctx context.Context, userID int64, delta model.StatsDelta) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO user_stats (user_id, edited_texts, used_tokens, corrections)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			edited_texts = user_stats.edited_texts + EXCLUDED.edited_texts,
			used_tokens  = user_stats.used_tokens + EXCLUDED.used_tokens,
			corrections  = user_stats.corrections + EXCLUDED.corrections,
			updated_at   = now()`,
		userID, delta.EditedTexts, delta.UsedTokens, delta.Corrections)
	return err
}
