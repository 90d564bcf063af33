// Copyright (c) 2025 Expensetracker
// Licensed under the MIT License. See LICENSE file in the project root for details.

package tokens

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces token keys in a shared Redis.
const DefaultRedisPrefix = "expensetracker:session"

// RedisStore keeps the pair in Redis so several client processes in the
// same deployment share one session. Both keys are written in one MULTI.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore returns a store using keys "<prefix>:access_token" and
// "<prefix>:refresh_token".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// OpenRedisStore parses a redis:// URL, pings the server and returns a store.
func OpenRedisStore(ctx context.Context, url, prefix string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return NewRedisStore(client, prefix), nil
}

func (r *RedisStore) accessKey() string  { return r.prefix + ":access_token" }
func (r *RedisStore) refreshKey() string { return r.prefix + ":refresh_token" }

func (r *RedisStore) Get(ctx context.Context) (Pair, error) {
	vals, err := r.client.MGet(ctx, r.accessKey(), r.refreshKey()).Result()
	if err != nil {
		return Pair{}, err
	}
	var p Pair
	if s, ok := vals[0].(string); ok {
		p.AccessToken = s
	}
	if s, ok := vals[1].(string); ok {
		p.RefreshToken = s
	}
	return p, nil
}

func (r *RedisStore) Set(ctx context.Context, p Pair) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		setOrDel(ctx, pipe, r.accessKey(), p.AccessToken)
		setOrDel(ctx, pipe, r.refreshKey(), p.RefreshToken)
		return nil
	})
	return err
}

func setOrDel(ctx context.Context, pipe redis.Pipeliner, key, value string) {
	if value == "" {
		pipe.Del(ctx, key)
		return
	}
	pipe.Set(ctx, key, value, 0)
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.accessKey(), r.refreshKey()).Err()
}

// Close releases the underlying client.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
