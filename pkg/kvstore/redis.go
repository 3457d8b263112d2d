package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces engine state keys in a shared Redis instance.
const redisKeyPrefix = "vesta:kv:"

// RedisStore implements Store using Redis for persistence.
// Use this store when multiple instances need to share engine state with
// low latency. String sets are stored as Redis sets; times and booleans as
// plain string values. Nothing expires: keys live until deleted.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	// Addr is the host:port of the Redis server.
	Addr string

	// Password authenticates against the server. Empty for none.
	Password string

	// DB selects the logical database. Default: 0
	DB int

	// Prefix namespaces all keys. Default: "vesta:kv:"
	Prefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisStoreConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("addr cannot be empty")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = redisKeyPrefix
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &RedisStore{client: client, prefix: cfg.Prefix}, nil
}

// NewRedisStoreWithClient wraps an existing client. The caller keeps
// ownership of the client lifecycle only if it also skips Close.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = redisKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(key string) string {
	return r.prefix + key
}

// GetTime retrieves the timestamp stored under key.
func (r *RedisStore) GetTime(ctx context.Context, key string) (time.Time, error) {
	if key == "" {
		return time.Time{}, fmt.Errorf("key cannot be empty")
	}

	raw, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get %q: %w", key, err)
	}

	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt timestamp for key %q: %w", key, err)
	}
	return t, nil
}

// SetTime persists a timestamp under key.
func (r *RedisStore) SetTime(ctx context.Context, key string, t time.Time) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	// 0 TTL: engine state never expires.
	if err := r.client.Set(ctx, r.key(key), t.Format(timeLayout), 0).Err(); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// GetStringSet retrieves the string set stored under key.
func (r *RedisStore) GetStringSet(ctx context.Context, key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	vals, err := r.client.SMembers(ctx, r.key(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get %q: %w", key, err)
	}
	if len(vals) == 0 {
		return nil, nil
	}
	return vals, nil
}

// SetStringSet persists a string set under key.
// The delete and re-add run in one transactional pipeline so concurrent
// readers never observe a partially written set.
func (r *RedisStore) SetStringSet(ctx context.Context, key string, vals []string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	vals = dedupe(vals)

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.key(key))
	if len(vals) > 0 {
		members := make([]interface{}, len(vals))
		for i, v := range vals {
			members[i] = v
		}
		pipe.SAdd(ctx, r.key(key), members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// GetBool retrieves the boolean stored under key.
func (r *RedisStore) GetBool(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key cannot be empty")
	}

	raw, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return raw == "1", nil
}

// SetBool persists a boolean under key.
func (r *RedisStore) SetBool(ctx context.Context, key string, v bool) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	value := "0"
	if v {
		value = "1"
	}
	if err := r.client.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Delete removes the value stored under key.
func (r *RedisStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	if err := r.client.Del(ctx, r.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
