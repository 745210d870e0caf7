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
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// TTLCache is an in-process Cache backed by ttlcache. Hits do not extend
// an entry's expiry.
type TTLCache[V any] struct {
	cache *ttlcache.Cache[string, V]
}

var _ Cache[int] = (*TTLCache[int])(nil)

// NewTTLCache creates the cache and starts its expiry goroutine. A capacity
// of zero means unbounded. Call Close to stop the goroutine.
func NewTTLCache[V any](capacity uint64) *TTLCache[V] {
	opts := []ttlcache.Option[string, V]{
		ttlcache.WithDisableTouchOnHit[string, V](),
	}
	if capacity > 0 {
		opts = append(opts, ttlcache.WithCapacity[string, V](capacity))
	}
	c := ttlcache.New(opts...)
	go c.Start()
	return &TTLCache[V]{cache: c}
}

func (c *TTLCache[V]) Get(_ context.Context, key string) (V, bool, error) {
	item := c.cache.Get(key)
	if item == nil || item.IsExpired() {
		var zero V
		return zero, false, nil
	}
	return item.Value(), true, nil
}

func (c *TTLCache[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	c.cache.Set(key, value, ttl)
	return nil
}

func (c *TTLCache[V]) Delete(_ context.Context, key string) error {
	c.cache.Delete(key)
	return nil
}

// Len reports the number of entries currently held, including expired
// entries not yet collected.
func (c *TTLCache[V]) Len() int {
	return c.cache.Len()
}

// Close stops the cache background goroutine and releases resources.
func (c *TTLCache[V]) Close() {
	c.cache.Stop()
}
