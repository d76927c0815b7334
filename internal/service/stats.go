package service

import (
	"context"
	"fmt"

	"editflow.app/server/internal/model"
	"editflow.app/server/internal/store"
)

// StatsService reads the usage counters the worker maintains.
type StatsService interface {
	Get(ctx context.Context, userID int64) (*model.UserStats, error)
	Feedback(ctx context.Context, userID int64, limit int32) ([]model.CorrectionFeedback, error)
}

type statsService struct {
	stats    store.StatsStore
	feedback store.FeedbackStore
}

func NewStatsService(stats store.StatsStore, feedback store.FeedbackStore) StatsService {
	return &statsService{stats: stats, feedback: feedback}
}

func (s *statsService) Get(ctx context.Context, userID int64) (*model.UserStats, error) {
	st, err := s.stats.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting stats: %w", err)
	}
	return st, nil
}

func (s *statsService) Feedback(ctx context.Context, userID int64, limit int32) ([]model.CorrectionFeedback, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.feedback.ListByUser(ctx, userID, limit)
}
