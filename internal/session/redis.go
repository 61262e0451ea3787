package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devashram/callseva/internal/model/call"
)

const sessionKeyPrefix = "call:session:"

// RedisStore keeps sessions in Redis so multiple instances can share call
// state. The inactivity expiry rides on the key TTL, refreshed on every
// access.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-backed store with the given inactivity TTL.
// A non-positive ttl falls back to DefaultTTL.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func sessionKey(callID string) string {
	return sessionKeyPrefix + callID
}

func (s *RedisStore) Create(ctx context.Context, state *call.State) error {
	state.LastActivityAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	ok, err := s.rdb.SetNX(ctx, sessionKey(state.CallID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("session: create: %w", err)
	}
	if !ok {
		return ErrDuplicateSession
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, callID string) (*call.State, error) {
	data, err := s.rdb.GetEx(ctx, sessionKey(callID), s.ttl).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrUnknownSession
		}
		return nil, fmt.Errorf("session: get: %w", err)
	}

	var state call.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("session: unmarshal: %w", err)
	}
	return &state, nil
}

func (s *RedisStore) Save(ctx context.Context, state *call.State) error {
	state.LastActivityAt = time.Now().UTC()
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	ok, err := s.rdb.SetXX(ctx, sessionKey(state.CallID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("session: save: %w", err)
	}
	if !ok {
		return ErrUnknownSession
	}
	return nil
}

func (s *RedisStore) Destroy(ctx context.Context, callID string) error {
	if err := s.rdb.Del(ctx, sessionKey(callID)).Err(); err != nil {
		return fmt.Errorf("session: destroy: %w", err)
	}
	return nil
}
