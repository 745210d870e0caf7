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
	"context"
	"errors"
	"fmt"
	"log/slog"

	mapset "github.com/deckarep/golang-set/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cardinalhq/dbconfig/configdb"
	"github.com/cardinalhq/dbconfig/internal/itemcodec"
	"github.com/cardinalhq/dbconfig/internal/kvcache"
	"github.com/cardinalhq/dbconfig/internal/logctx"
	"github.com/cardinalhq/dbconfig/internal/tenancy"
)

// GetByKey returns the decoded value for itemKey, or nil if no live entry
// exists. A row with an unknown item type returns an error matching
// itemcodec.ErrUnknownItemType.
func (s *Service) GetByKey(ctx context.Context, itemKey string) (v *itemcodec.Value, err error) {
	ctx, end := startSpan(ctx, "configservice.GetByKey", attribute.String("item_key", itemKey))
	defer func() { end(err) }()

	return s.readThrough(ctx, itemKey, func(ctx context.Context) (*configdb.ConfigItem, error) {
		recordStoreQuery(ctx, "find_by_key")
		return s.store.FindConfigItemByKey(ctx, itemKey)
	})
}

// GetByKeys resolves every distinct key in itemKeys. The result has one
// entry per distinct key; keys without a live entry map to nil.
func (s *Service) GetByKeys(ctx context.Context, itemKeys []string) (_ map[string]*itemcodec.Value, err error) {
	ctx, end := startSpan(ctx, "configservice.GetByKeys", attribute.Int("keys", len(itemKeys)))
	defer func() { end(err) }()

	seen := mapset.NewThreadUnsafeSetWithSize[string](len(itemKeys))
	keys := make([]string, 0, len(itemKeys))
	for _, k := range itemKeys {
		if seen.Add(k) {
			keys = append(keys, k)
		}
	}

	result := make(map[string]*itemcodec.Value, len(keys))
	unresolved := mapset.NewThreadUnsafeSet[string]()

	// The fast path reads the bare key, not cacheKey(k). Entries written by this
	// package are never found here unless something else caches under the
	// bare key.
	for _, k := range keys {
		item, ok, err := s.cache.Get(ctx, k)
		if errors.Is(err, kvcache.ErrDecode) {
			// Some other writer owns this bare key.
			logctx.FromContext(ctx).Debug("Ignoring undecodable cache value under bare key",
				slog.String("itemKey", k), slog.Any("error", err))
			unresolved.Add(k)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read cache for %q: %w", k, err)
		}
		if !ok || item == nil {
			unresolved.Add(k)
			continue
		}
		v, err := decodeItem(ctx, item)
		if err != nil {
			return nil, err
		}
		recordLookup(ctx, lookupFastPath)
		result[k] = v
	}

	if unresolved.IsEmpty() {
		return result, nil
	}

	recordStoreQuery(ctx, "find_by_keys")
	items, err := s.store.FindConfigItemsByKeys(ctx, keys)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*configdb.ConfigItem, len(items))
	for i := range items {
		byKey[items[i].ItemKey] = &items[i]
	}

	for _, k := range keys {
		if !unresolved.Contains(k) {
			continue
		}
		v, err := s.readThrough(ctx, k, func(context.Context) (*configdb.ConfigItem, error) {
			return byKey[k], nil
		})
		if err != nil {
			return nil, err
		}
		result[k] = v
	}

	return result, nil
}

// GetByKeyCentral runs GetByKey inside the central tenant context.
func (s *Service) GetByKeyCentral(ctx context.Context, itemKey string) (*itemcodec.Value, error) {
	return tenancy.Run(ctx, s.runner, func(ctx context.Context) (*itemcodec.Value, error) {
		return s.GetByKey(ctx, itemKey)
	})
}

// GetByKeysCentral runs GetByKeys inside the central tenant context.
func (s *Service) GetByKeysCentral(ctx context.Context, itemKeys []string) (map[string]*itemcodec.Value, error) {
	return tenancy.Run(ctx, s.runner, func(ctx context.Context) (map[string]*itemcodec.Value, error) {
		return s.GetByKeys(ctx, itemKeys)
	})
}

// readThrough resolves one key under its prefixed cache key. An absent
// result is pulled from the cache immediately.
func (s *Service) readThrough(ctx context.Context, itemKey string, load func(context.Context) (*configdb.ConfigItem, error)) (*itemcodec.Value, error) {
	key := cacheKey(itemKey)
	loaded := false

	item, err := kvcache.Remember(ctx, s.cache, key, s.ttl, func(ctx context.Context) (*configdb.ConfigItem, error) {
		loaded = true
		return load(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config item %q: %w", itemKey, err)
	}

	if item == nil {
		recordLookup(ctx, lookupNegative)
		if _, _, err := kvcache.Pull(ctx, s.cache, key); err != nil {
			return nil, fmt.Errorf("failed to evict absent config item %q: %w", itemKey, err)
		}
		logctx.FromContext(ctx).Debug("Config item not found, evicted absent marker", slog.String("itemKey", itemKey))
		return nil, nil
	}

	if loaded {
		recordLookup(ctx, lookupMiss)
	} else {
		recordLookup(ctx, lookupHit)
	}
	return decodeItem(ctx, item)
}
