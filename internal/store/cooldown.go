package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cooldownPrefix = "editflow:cooldown:"

type cooldownStore struct {
	redis *redis.Client
}

func NewCooldownStore(rdb *redis.Client) CooldownStore {
	return &cooldownStore{redis: rdb}
}

func cooldownKey(userID int64) string {
	return cooldownPrefix + strconv.FormatInt(userID, 10)
}

func (s *cooldownStore) Acquire(ctx context.Context, userID int64, ttl time.Duration) (bool, time.Duration, error) {
	key := cooldownKey(userID)
	ok, err := s.redis.SetNX(ctx, key, time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return false, 0, fmt.Errorf("acquiring cooldown: %w", err)
	}
	if ok {
		return true, 0, nil
	}

	left, err := s.redis.PTTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("reading cooldown: %w", err)
	}
	if left < 0 {
		left = 0
	}
	return false, left, nil
}

func (s *cooldownStore) Release(ctx context.Context, userID int64) error {
	return s.redis.Del(ctx, cooldownKey(userID)).Err()
}
