package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSnapshots stores each record under a prefixed Redis key. This is the
// default driver: a single small deployment gets durable-enough state with
// no schema to manage.
type RedisSnapshots struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisSnapshots(rdb *redis.Client, prefix string) *RedisSnapshots {
	if prefix == "" {
		prefix = "traindesk"
	}
	return &RedisSnapshots{rdb: rdb, prefix: prefix}
}

func (s *RedisSnapshots) key(name string) string {
	return s.prefix + ":snapshot:" + name
}

func (s *RedisSnapshots) Load(ctx context.Context, name string) ([]byte, error) {
	payload, err := s.rdb.Get(ctx, s.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *RedisSnapshots) Save(ctx context.Context, name string, payload []byte) error {
	// No TTL: snapshots live until overwritten.
	return s.rdb.Set(ctx, s.key(name), payload, 0).Err()
}

func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
