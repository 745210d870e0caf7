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

// Package kvcache defines the get/set-with-expiry/delete cache capability
// used by the config resolver, with in-process and Redis backends.
package kvcache

import (
	"context"
	"errors"
	"time"
)

// ErrDecode marks a Get that found the key but could not turn the stored
// bytes into a V, typically because another writer shares the keyspace.
var ErrDecode = errors.New("cached value could not be decoded")

// Cache is a key-value cache with per-entry expiry. Get reports whether the
// key was present; a present entry may hold the zero value of V.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Remember returns the cached value for key, or calls compute, stores its
// result for ttl and returns it. Errors from compute are not cached.
func Remember[V any](ctx context.Context, c Cache[V], key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok, err := c.Get(ctx, key); err != nil {
		var zero V
		return zero, err
	} else if ok {
		return v, nil
	}

	v, err := compute(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		var zero V
		return zero, err
	}
	return v, nil
}

// Pull returns the cached value for key and removes it.
func Pull[V any](ctx context.Context, c Cache[V], key string) (V, bool, error) {
	v, ok, err := c.Get(ctx, key)
	if err != nil {
		return v, false, err
	}
	if err := c.Delete(ctx, key); err != nil {
		return v, ok, err
	}
	return v, ok, nil
}
