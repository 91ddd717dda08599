package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
)

// RedisBackend stores JSON-encoded entries under prefix+key with the cache TTL,
// so several bot instances (or a restart) share recent snapshots.
type RedisBackend[V any] struct {
	rdb    *goredis.Client
	prefix string
}

func NewRedisBackend[V any](rdb *goredis.Client, prefix string) *RedisBackend[V] {
	return &RedisBackend[V]{rdb: rdb, prefix: prefix}
}

func (r *RedisBackend[V]) Load(ctx context.Context, key string) (Entry[V], bool, error) {
	var e Entry[V]
	data, err := r.rdb.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return e, false, nil
	}
	if err != nil {
		return e, false, err
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, true, nil
}

func (r *RedisBackend[V]) Store(ctx context.Context, key string, e Entry[V], ttl time.Duration) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.prefix+key, data, ttl).Err()
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// PingContext checks the Redis connection.
func (r *RedisBackend[V]) PingContext(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}
