package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps the items as plain string keys below a prefix, so that several sites can
// share one server.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to the server at redisURL and verifies the connection.
func NewRedis(ctx context.Context, redisURL string, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	opt.PoolSize = 4
	opt.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return &Redis{client: client, prefix: prefix}, nil
}

func (r *Redis) GetItem(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

func (r *Redis) SetItem(ctx context.Context, key string, value string) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (r *Redis) RemoveItem(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// maxUpdateAttempts bounds how often Update retries after a concurrent write to the key.
const maxUpdateAttempts = 10

// ErrConflict is returned by Update when the key kept changing under it.
var ErrConflict = errors.New("storage: too many concurrent updates")

// Update runs fn inside a WATCH transaction, so a write by another client between reading
// and storing the key makes the transaction fail; it is then retried with the new value.
func (r *Redis) Update(ctx context.Context, key string, fn UpdateFunc) error {
	fullKey := r.prefix + key
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fullKey).Result()
		found := true
		if errors.Is(err, redis.Nil) {
			found = false
		} else if err != nil {
			return err
		}
		value, err := fn(current, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, fullKey, value, 0)
			return nil
		})
		return err
	}
	for i := 0; i < maxUpdateAttempts; i++ {
		err := r.client.Watch(ctx, txf, fullKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", key, err)
		}
		return nil
	}
	return fmt.Errorf("failed to update %s: %w", key, ErrConflict)
}

// Close closes the Redis client.
func (r *Redis) Close() error {
	return r.client.Close()
}
