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

package configservice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/dbconfig/internal/itemcodec"
	"github.com/cardinalhq/dbconfig/internal/kvcache"
	"github.com/cardinalhq/dbconfig/internal/logctx"
	"github.com/cardinalhq/dbconfig/internal/tenancy"
)

func newTestService(opts ...Option) (*Service, *mockStore, *fakeCache) {
	store := newMockStore()
	cache := newFakeCache()
	return New(store, cache, opts...), store, cache
}

func mustString(t *testing.T, v *itemcodec.Value) string {
	t.Helper()
	require.NotNil(t, v)
	s, ok := v.AsString()
	require.True(t, ok, "expected string value, got %s", v.Kind())
	return s
}

func TestGetByKey_CachesUnderPrefixedKey(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()
	store.put("site.name", "string", "Acme")

	v, err := svc.GetByKey(ctx, "site.name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", mustString(t, v))

	v, err = svc.GetByKey(ctx, "site.name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", mustString(t, v))

	assert.Equal(t, int32(1), store.findCallCount.Load())
	assert.True(t, cache.has("item_key:site.name"))
	assert.False(t, cache.has("site.name"))
	assert.Equal(t, DefaultTTL, cache.lastTTL)
}

func TestGetByKey_MissingIsNotCached(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()

	for range 2 {
		v, err := svc.GetByKey(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, v)
		assert.False(t, cache.has("item_key:missing"))
	}
	assert.Equal(t, int32(2), store.findCallCount.Load())

	store.put("missing", "string", "now here")
	v, err := svc.GetByKey(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, "now here", mustString(t, v))
}

func TestGetByKey_StaleUntilExpiryOrClear(t *testing.T) {
	ctx := context.Background()

	t.Run("ttl expiry", func(t *testing.T) {
		svc, _, cache := newTestService()

		_, err := svc.AddEntry(ctx, "k", "string", "v1", "t")
		require.NoError(t, err)
		v, err := svc.GetByKey(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v1", mustString(t, v))

		_, err = svc.AddEntry(ctx, "k", "string", "v2", "t")
		require.NoError(t, err)

		cache.advance(DefaultTTL - time.Second)
		v, err = svc.GetByKey(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v1", mustString(t, v))

		cache.advance(time.Second)
		v, err = svc.GetByKey(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", mustString(t, v))
	})

	t.Run("manual clear", func(t *testing.T) {
		svc, _, cache := newTestService()

		_, err := svc.AddEntry(ctx, "k", "string", "v1", "t")
		require.NoError(t, err)
		_, err = svc.GetByKey(ctx, "k")
		require.NoError(t, err)
		_, err = svc.AddEntry(ctx, "k", "string", "v2", "t")
		require.NoError(t, err)

		v, err := svc.GetByKey(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v1", mustString(t, v))

		cache.clear()
		v, err = svc.GetByKey(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "v2", mustString(t, v))
	})
}

func TestGetByKey_WithTTL(t *testing.T) {
	svc, store, cache := newTestService(WithTTL(5 * time.Minute))
	store.put("k", "bool", "1")

	_, err := svc.GetByKey(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cache.lastTTL)
	assert.Equal(t, 5*time.Minute, svc.TTL())

	ignored := New(store, cache, WithTTL(0))
	assert.Equal(t, DefaultTTL, ignored.TTL())
}

func TestGetByKey_UnknownTypeFailsEveryRead(t *testing.T) {
	svc, store, _ := newTestService()
	store.put("bad", "enum-unknown", "x")

	for range 2 {
		v, err := svc.GetByKey(context.Background(), "bad")
		assert.Nil(t, v)
		require.Error(t, err)
		assert.ErrorIs(t, err, itemcodec.ErrUnknownItemType)

		var ute *itemcodec.UnknownTypeError
		require.True(t, errors.As(err, &ute))
		assert.Equal(t, "bad", ute.Key)
		assert.Equal(t, "enum-unknown", ute.Type)
		assert.Equal(t, "x", ute.Value)
	}
	assert.Equal(t, int32(1), store.findCallCount.Load())
}

func TestGetByKey_StoreErrorPropagatesAndIsNotCached(t *testing.T) {
	svc, store, cache := newTestService()
	boom := errors.New("connection refused")
	store.findErr = boom

	_, err := svc.GetByKey(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, cache.has("item_key:k"))
}

func TestGetByKey_CacheErrorPropagates(t *testing.T) {
	svc, store, cache := newTestService()
	boom := errors.New("cache down")
	cache.getErr = boom

	_, err := svc.GetByKey(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.findCallCount.Load())
}

func TestGetByKeys_MissingKeysMapToNil(t *testing.T) {
	svc, store, _ := newTestService()
	store.put("a", "string", "A")
	store.put("b", "json", `{"a":1}`)

	got, err := svc.GetByKeys(context.Background(), []string{"a", "b", "missing"})
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Contains(t, got, "missing")
	assert.Nil(t, got["missing"])
	assert.Equal(t, "A", mustString(t, got["a"]))

	doc, ok := got["b"].AsJSON()
	require.True(t, ok)
	if diff := cmp.Diff(map[string]any{"a": json.Number("1")}, doc); diff != "" {
		t.Errorf("json value mismatch (-want +got):\n%s", diff)
	}
}

func TestGetByKeys_PopulatesPrefixedCache(t *testing.T) {
	svc, store, cache := newTestService()
	store.put("a", "string", "A")

	_, err := svc.GetByKeys(context.Background(), []string{"a", "missing"})
	require.NoError(t, err)
	assert.True(t, cache.has("item_key:a"))
	assert.False(t, cache.has("item_key:missing"))

	// The prefixed entry serves single reads without the store.
	_, err = svc.GetByKey(context.Background(), "a")
	require.NoError(t, err)
	assert.Zero(t, store.findCallCount.Load())
}

func TestGetByKeys_FastPathAllWarm(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()
	store.put("a", "string", "A")
	store.put("b", "bool", "1")

	for _, k := range []string{"a", "b"} {
		item, err := store.FindConfigItemByKey(ctx, k)
		require.NoError(t, err)
		require.NoError(t, cache.Set(ctx, k, item, time.Hour))
	}
	store.findCallCount.Store(0)

	got, err := svc.GetByKeys(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "A", mustString(t, got["a"]))
	b, ok := got["b"].AsBool()
	require.True(t, ok)
	assert.True(t, b)

	assert.Zero(t, store.findManyCallCount.Load())
}

func TestGetByKeys_PartialFastPathQueriesFullSet(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()
	store.put("a", "string", "from-store")
	store.put("b", "string", "B")

	// The bare-key entry disagrees with the store so its source is visible.
	warm, err := store.FindConfigItemByKey(ctx, "a")
	require.NoError(t, err)
	warm.ItemValue = "from-cache"
	require.NoError(t, cache.Set(ctx, "a", warm, time.Hour))

	got, err := svc.GetByKeys(ctx, []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "from-cache", mustString(t, got["a"]))
	assert.Equal(t, "B", mustString(t, got["b"]))

	assert.Equal(t, int32(1), store.findManyCallCount.Load())
	assert.ElementsMatch(t, []string{"a", "b"}, store.lastFindManyKeys)
	assert.False(t, cache.has("item_key:a"))
	assert.True(t, cache.has("item_key:b"))
}

func TestGetByKeys_NilBareKeyEntryIsUnresolved(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()
	store.put("a", "string", "A")
	require.NoError(t, cache.Set(ctx, "a", nil, time.Hour))

	got, err := svc.GetByKeys(ctx, []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, "A", mustString(t, got["a"]))
	assert.Equal(t, int32(1), store.findManyCallCount.Load())
}

func TestGetByKeys_UndecodableBareKeyFallsThroughToStore(t *testing.T) {
	svc, store, cache := newTestService()
	store.put("site.name", "string", "Acme")
	cache.keyErrs = map[string]error{
		"site.name": fmt.Errorf("redis decode %q: %w", "site.name", kvcache.ErrDecode),
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logctx.WithLogger(context.Background(), logger)

	got, err := svc.GetByKeys(ctx, []string{"site.name", "other"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Acme", mustString(t, got["site.name"]))
	assert.Nil(t, got["other"])

	assert.Equal(t, int32(1), store.findManyCallCount.Load())
	assert.ElementsMatch(t, []string{"site.name", "other"}, store.lastFindManyKeys)
	assert.True(t, cache.has("item_key:site.name"))
	assert.Contains(t, logs.String(), "Ignoring undecodable cache value")
	assert.Contains(t, logs.String(), `"itemKey":"site.name"`)
}

func TestGetByKeys_BareKeyCacheFailureAbortsBatch(t *testing.T) {
	svc, store, cache := newTestService()
	store.put("a", "string", "A")
	boom := errors.New("connection reset")
	cache.keyErrs = map[string]error{"a": boom}

	_, err := svc.GetByKeys(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, store.findManyCallCount.Load())
}

func TestGetByKeys_DeduplicatesKeys(t *testing.T) {
	svc, store, _ := newTestService()
	store.put("a", "string", "A")

	got, err := svc.GetByKeys(context.Background(), []string{"a", "a", "missing", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []string{"a", "missing"}, store.lastFindManyKeys)
}

func TestGetByKeys_Empty(t *testing.T) {
	svc, store, _ := newTestService()

	got, err := svc.GetByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, store.findManyCallCount.Load())
}

func TestGetByKeys_UnknownTypeAbortsBatch(t *testing.T) {
	svc, store, _ := newTestService()
	store.put("a", "string", "A")
	store.put("bad", "enum-unknown", "x")

	got, err := svc.GetByKeys(context.Background(), []string{"a", "bad"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, itemcodec.ErrUnknownItemType)
}

func TestGetByKeys_StoreErrorPropagates(t *testing.T) {
	svc, store, _ := newTestService()
	boom := errors.New("timeout")
	store.findErr = boom

	_, err := svc.GetByKeys(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)
}

func TestCentralReads_RunThroughRunner(t *testing.T) {
	var calls int
	var sawCentral bool
	runner := tenancy.CentralFunc(func(ctx context.Context, fn func(context.Context) error) error {
		calls++
		return tenancy.ContextCentral{}.RunCentral(ctx, func(ctx context.Context) error {
			sawCentral = tenancy.IsCentral(ctx)
			return fn(ctx)
		})
	})
	svc, store, _ := newTestService(WithRunner(runner))
	store.put("a", "string", "A")

	v, err := svc.GetByKeyCentral(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "A", mustString(t, v))

	got, err := svc.GetByKeysCentral(context.Background(), []string{"a", "missing"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.Equal(t, 2, calls)
	assert.True(t, sawCentral)
}

func TestCentralReads_RunnerErrorPropagates(t *testing.T) {
	boom := errors.New("tenant switch failed")
	runner := tenancy.CentralFunc(func(context.Context, func(context.Context) error) error {
		return boom
	})
	svc, store, _ := newTestService(WithRunner(runner))

	_, err := svc.GetByKeyCentral(context.Background(), "a")
	assert.Same(t, boom, err)

	_, err = svc.GetByKeysCentral(context.Background(), []string{"a"})
	assert.Same(t, boom, err)

	assert.Zero(t, store.findCallCount.Load())
}

func TestCentralReads_DefaultRunnerIsDirect(t *testing.T) {
	svc, store, _ := newTestService(WithRunner(nil))
	store.put("a", "string", "A")

	v, err := svc.GetByKeyCentral(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "A", mustString(t, v))
}

func TestCentralReads_StoreQueriesReportScope(t *testing.T) {
	svc, store, _ := newTestService(WithRunner(tenancy.ContextCentral{}))
	store.put("a", "string", "A")

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := logctx.WithLogger(context.Background(), logger)

	_, err := svc.GetByKeyCentral(ctx, "a")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"op":"find_by_key","scope":"central"`)

	logs.Reset()
	_, err = svc.GetByKeys(ctx, []string{"b"})
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `"op":"find_by_keys","scope":"default"`)
}
