// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package kvcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache is a Cache shared between processes through Redis. Values are
// stored as JSON.
type RedisCache[V any] struct {
	client    redis.Cmdable
	keyPrefix string
}

var _ Cache[int] = (*RedisCache[int])(nil)

// RedisOption configures a RedisCache.
type RedisOption func(*redisOptions)

type redisOptions struct {
	keyPrefix string
}

// WithKeyPrefix namespaces every key as "prefix:key".
func WithKeyPrefix(prefix string) RedisOption {
	return func(o *redisOptions) {
		o.keyPrefix = prefix
	}
}

func NewRedisCache[V any](client redis.Cmdable, opts ...RedisOption) *RedisCache[V] {
	var o redisOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisCache[V]{client: client, keyPrefix: o.keyPrefix}
}

// NewRedisCacheFromURL parses a redis:// URL and connects lazily.
func NewRedisCacheFromURL[V any](url string, opts ...RedisOption) (*RedisCache[V], error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedisCache[V](redis.NewClient(options), opts...), nil
}

func (c *RedisCache[V]) fullKey(key string) string {
	if c.keyPrefix == "" {
		return key
	}
	return c.keyPrefix + ":" + key
}

func (c *RedisCache[V]) Get(ctx context.Context, key string) (V, bool, error) {
	var v V
	b, err := c.client.Get(ctx, c.fullKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return v, false, nil
		}
		return v, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return v, false, fmt.Errorf("redis decode %q: %w: %w", key, ErrDecode, err)
	}
	return v, true, nil
}

func (c *RedisCache[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis encode %q: %w", key, err)
	}
	if err := c.client.Set(ctx, c.fullKey(key), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (c *RedisCache[V]) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying client when it owns a connection pool.
func (c *RedisCache[V]) Close() error {
	if closer, ok := c.client.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
