// Package idempotency guards against duplicate submission of the same logical request.
package idempotency

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "idempotency:"

// ErrEmptyKey indicates that an empty scope or key was passed.
var ErrEmptyKey = errors.New("idempotency key cannot be empty")

// RedisStore claims idempotency keys with SET NX and a TTL.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisStore returns RedisStore keeping claimed keys for ttl.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func redisKey(scope, key string) string {
	return keyPrefix + scope + ":" + key
}

// Claim marks the key as used by scope.
//
// It returns false if the key was already claimed and has not expired yet.
func (s *RedisStore) Claim(ctx context.Context, scope, key string) (bool, error) {
	if scope == "" || key == "" {
		return false, ErrEmptyKey
	}

	claimed, err := s.client.SetNX(ctx, redisKey(scope, key), time.Now().UTC().Format(time.RFC3339Nano), s.ttl).Result()
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("idempotency_key", key).Send()
		return false, err
	}

	return claimed, nil
}

// Release frees the key so the request can be submitted again.
func (s *RedisStore) Release(ctx context.Context, scope, key string) error {
	if scope == "" || key == "" {
		return ErrEmptyKey
	}

	if err := s.client.Del(ctx, redisKey(scope, key)).Err(); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("idempotency_key", key).Send()
		return err
	}

	return nil
}

// Connect opens a Redis client and pings it.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
