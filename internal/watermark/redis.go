package watermark

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the watermark under a single Redis key.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore returns a store using key on rdb.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	return &RedisStore{rdb: rdb, key: key}
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

// Load reads the watermark. A missing key means nothing was delivered yet.
func (s *RedisStore) Load(ctx context.Context) (int64, error) {
	val, err := s.rdb.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, &Error{Op: "read", Location: "redis key " + s.key, Cause: err}
	}

	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, &Error{Op: "decode", Location: "redis key " + s.key, Cause: err}
	}
	return id, nil
}

// Save overwrites the key without expiry.
func (s *RedisStore) Save(ctx context.Context, id int64) error {
	if err := s.rdb.Set(ctx, s.key, id, 0).Err(); err != nil {
		return &Error{Op: "write", Location: "redis key " + s.key, Cause: err}
	}
	return nil
}
