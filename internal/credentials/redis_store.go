package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	redisclient "github.com/lunamercado/storefront-gateway/pkg/redis"
)

type redisKV interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CredentialKey(sessionKey string) string
}

// RedisStore persists token pairs in Redis, one entry per storefront session.
type RedisStore struct {
	kv  redisKV
	ttl time.Duration
}

// NewRedisStore builds the production credential store.
func NewRedisStore(client *redisclient.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("credential ttl must be positive")
	}
	return &RedisStore{kv: client, ttl: ttl}, nil
}

func (s *RedisStore) Get(ctx context.Context, sessionKey string) (Pair, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return Pair{}, nil
	}
	raw, err := s.kv.Get(ctx, s.kv.CredentialKey(sessionKey))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Pair{}, nil
		}
		return Pair{}, fmt.Errorf("reading credentials: %w", err)
	}
	var pair Pair
	if err := json.Unmarshal([]byte(raw), &pair); err != nil {
		return Pair{}, fmt.Errorf("decoding credentials: %w", err)
	}
	return pair, nil
}

func (s *RedisStore) Set(ctx context.Context, sessionKey string, pair Pair) error {
	if strings.TrimSpace(sessionKey) == "" {
		return fmt.Errorf("session key is required")
	}
	raw, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}
	return s.kv.Set(ctx, s.kv.CredentialKey(sessionKey), string(raw), s.ttl)
}

func (s *RedisStore) Clear(ctx context.Context, sessionKey string) error {
	if strings.TrimSpace(sessionKey) == "" {
		return nil
	}
	return s.kv.Del(ctx, s.kv.CredentialKey(sessionKey))
}
