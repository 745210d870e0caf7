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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemember_ComputesOnceThenHits(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string](0)
	t.Cleanup(c.Close)

	calls := 0
	compute := func(context.Context) (string, error) {
		calls++
		return "computed", nil
	}

	v, err := Remember(ctx, c, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)

	v, err = Remember(ctx, c, "k", time.Minute, compute)
	require.NoError(t, err)
	assert.Equal(t, "computed", v)
	assert.Equal(t, 1, calls)
}

func TestRemember_CachesZeroValue(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[*string](0)
	t.Cleanup(c.Close)

	v, err := Remember(ctx, c, "absent", time.Minute, func(context.Context) (*string, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Nil(t, v)

	got, ok, err := c.Get(ctx, "absent")
	require.NoError(t, err)
	assert.True(t, ok, "nil result is stored as a present entry")
	assert.Nil(t, got)
}

func TestRemember_DoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string](0)
	t.Cleanup(c.Close)

	boom := errors.New("boom")
	_, err := Remember(ctx, c, "k", time.Minute, func(context.Context) (string, error) {
		return "", boom
	})
	assert.ErrorIs(t, err, boom)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPull_RemovesEntry(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string](0)
	t.Cleanup(c.Close)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	v, ok, err := Pull[string](ctx, c, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", v)

	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = Pull[string](ctx, c, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCache_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string](0)
	t.Cleanup(c.Close)

	require.NoError(t, c.Set(ctx, "k", "v", 50*time.Millisecond))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	time.Sleep(80 * time.Millisecond)

	_, ok, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCache_HitDoesNotExtendExpiry(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[string](0)
	t.Cleanup(c.Close)

	require.NoError(t, c.Set(ctx, "k", "v", 100*time.Millisecond))
	for i := 0; i < 3; i++ {
		time.Sleep(40 * time.Millisecond)
		_, _, _ = c.Get(ctx, "k")
	}

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTTLCache_Capacity(t *testing.T) {
	ctx := context.Background()
	c := NewTTLCache[int](2)
	t.Cleanup(c.Close)

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Set(ctx, "c", 3, time.Minute))

	assert.Equal(t, 2, c.Len())
	_, ok, _ := c.Get(ctx, "c")
	assert.True(t, ok)
}
