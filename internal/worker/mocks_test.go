package worker_test

import (
	"context"
	"errors"
	"sync"

	"editflow.app/server/internal/model"
	"editflow.app/server/internal/queue"
	"editflow.app/server/internal/store"
	"editflow.app/server/internal/worker"
)

type mockFeedbackStore struct {
	createFn func(ctx context.Context, fb *model.CorrectionFeedback) error
	created  []model.CorrectionFeedback
}

func (m *mockFeedbackStore) Create(ctx context.Context, fb *model.CorrectionFeedback) error {
	if m.createFn != nil {
		if err := m.createFn(ctx, fb); err != nil {
			return err
		}
	}
	m.created = append(m.created, *fb)
	return nil
}

func (m *mockFeedbackStore) ListByUser(_ context.Context, _ int64, _ int32) ([]model.CorrectionFeedback, error) {
	return m.created, nil
}

type mockStatsStore struct {
	incrementFn func(ctx context.Context, userID int64, delta model.StatsDelta) error
	deltas      map[int64]model.StatsDelta
}

func (m *mockStatsStore) Get(_ context.Context, userID int64) (*model.UserStats, error) {
	d := m.deltas[userID]
	return &model.UserStats{
		UserID:      userID,
		EditedTexts: d.EditedTexts,
		UsedTokens:  d.UsedTokens,
		Corrections: d.Corrections,
	}, nil
}

func (m *mockStatsStore) Increment(ctx context.Context, userID int64, delta model.StatsDelta) error {
	if m.incrementFn != nil {
		if err := m.incrementFn(ctx, userID, delta); err != nil {
			return err
		}
	}
	if m.deltas == nil {
		m.deltas = map[int64]model.StatsDelta{}
	}
	cur := m.deltas[userID]
	cur.EditedTexts += delta.EditedTexts
	cur.UsedTokens += delta.UsedTokens
	cur.Corrections += delta.Corrections
	m.deltas[userID] = cur
	return nil
}

type mockStoreProvider struct {
	feedback *mockFeedbackStore
	stats    *mockStatsStore
}

func (m *mockStoreProvider) Feedback() store.FeedbackStore {
	return m.feedback
}

func (m *mockStoreProvider) Stats() store.StatsStore {
	return m.stats
}

type mockTxRunner struct {
	stores *mockStoreProvider
	calls  int
}

func (m *mockTxRunner) WithTx(_ context.Context, fn func(stores worker.StoreProvider) error) error {
	m.calls++
	return fn(m.stores)
}

type mockProcessor struct {
	processFn func(ctx context.Context, msg queue.Message, stores worker.StoreProvider) error
}

func (m *mockProcessor) Process(ctx context.Context, msg queue.Message, stores worker.StoreProvider) error {
	if m.processFn != nil {
		return m.processFn(ctx, msg, stores)
	}
	return nil
}

var errReadDone = errors.New("no more batches")

type mockConsumer struct {
	mu       sync.Mutex
	batches  [][]queue.Message
	acked    []string
	requeued []string
	dlq      []string
	readErr  error
}

func (m *mockConsumer) Read(ctx context.Context) ([]queue.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return nil, m.readErr
	}
	if len(m.batches) == 0 {
		return nil, errReadDone
	}
	batch := m.batches[0]
	m.batches = m.batches[1:]
	return batch, nil
}

func (m *mockConsumer) Ack(_ context.Context, msg queue.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.acked = append(m.acked, msg.ID)
	return nil
}

func (m *mockConsumer) Requeue(_ context.Context, msg queue.Message, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requeued = append(m.requeued, msg.ID)
	return nil
}

func (m *mockConsumer) SendDLQ(_ context.Context, msg queue.Message, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dlq = append(m.dlq, msg.ID)
	return nil
}

func (m *mockConsumer) snapshot() (acked, requeued, dlq []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.acked...), append([]string(nil), m.requeued...), append([]string(nil), m.dlq...)
}
