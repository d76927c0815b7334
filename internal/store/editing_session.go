package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"

	"editflow.app/server/internal/model"
)

const (
	editingSessionPrefix = "editflow:editing_session:"
	maxUpdateAttempts    = 5
)

type editingSessionStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewEditingSessionStore keeps sessions under a sliding ttl: every write
// pushes the expiry forward.
func NewEditingSessionStore(rdb *redis.Client, ttl time.Duration) EditingSessionStore {
	return &editingSessionStore{redis: rdb, ttl: ttl}
}

func editingSessionKey(id string) string {
	return editingSessionPrefix + id
}

func (s *editingSessionStore) Create(ctx context.Context, sess *model.EditingSession) error {
	payload, err := msgpack.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding editing session: %w", err)
	}

	ok, err := s.redis.SetNX(ctx, editingSessionKey(sess.ID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("storing editing session: %w", err)
	}
	if !ok {
		return ErrConflict
	}
	return nil
}

func (s *editingSessionStore) Get(ctx context.Context, id string) (*model.EditingSession, error) {
	payload, err := s.redis.Get(ctx, editingSessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loading editing session: %w", err)
	}
	return decodeEditingSession(payload)
}

// Update runs fn inside WATCH/MULTI so two requests on one session never
// interleave. A lost race reloads the session and calls fn again.
func (s *editingSessionStore) Update(ctx context.Context, id string, fn func(sess *model.EditingSession) error) (*model.EditingSession, error) {
	key := editingSessionKey(id)
	var result *model.EditingSession

	txf := func(tx *redis.Tx) error {
		payload, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return ErrNotFound
			}
			return err
		}

		sess, err := decodeEditingSession(payload)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		sess.UpdatedAt = time.Now().UTC()

		updated, err := msgpack.Marshal(sess)
		if err != nil {
			return fmt.Errorf("encoding editing session: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = sess
		return nil
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrTxConflict
}

func (s *editingSessionStore) Delete(ctx context.Context, id string) error {
	n, err := s.redis.Del(ctx, editingSessionKey(id)).Result()
	if err != nil {
		return fmt.Errorf("deleting editing session: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func decodeEditingSession(payload []byte) (*model.EditingSession, error) {
	var sess model.EditingSession
	if err := msgpack.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decoding editing session: %w", err)
	}
	return &sess, nil
}
