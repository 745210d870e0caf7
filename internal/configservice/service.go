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
	"sync"
	"time"

	"github.com/cardinalhq/dbconfig/configdb"
	"github.com/cardinalhq/dbconfig/internal/itemcodec"
	"github.com/cardinalhq/dbconfig/internal/kvcache"
	"github.com/cardinalhq/dbconfig/internal/tenancy"
)

// EntryStore is the persistence contract the resolver needs. Reads must
// exclude soft-deleted rows and report absence as a nil item, not an error.
type EntryStore interface {
	UpsertConfigItem(ctx context.Context, arg configdb.UpsertConfigItemParams) (configdb.ConfigItem, error)
	FindConfigItemByKey(ctx context.Context, itemKey string) (*configdb.ConfigItem, error)
	FindConfigItemsByKeys(ctx context.Context, itemKeys []string) ([]configdb.ConfigItem, error)
	ListConfigItemsByTag(ctx context.Context, itemTag string) ([]configdb.ConfigItem, error)
	SoftDeleteConfigItem(ctx context.Context, itemKey string) (int64, error)
}

// ItemCache holds rows by cache key. A nil row is the absent marker.
type ItemCache = kvcache.Cache[*configdb.ConfigItem]

// Service resolves config entries through a read-through cache.
type Service struct {
	store  EntryStore
	cache  ItemCache
	ttl    time.Duration
	runner tenancy.Runner
}

// Option configures a Service.
type Option func(*Service)

// WithTTL overrides DefaultTTL. Non-positive durations are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithRunner sets the strategy used by the central read variants.
func WithRunner(r tenancy.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

// New creates a Service. Without WithRunner, central reads run directly.
func New(store EntryStore, cache ItemCache, opts ...Option) *Service {
	s := &Service{
		store:  store,
		cache:  cache,
		ttl:    DefaultTTL,
		runner: tenancy.Direct{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL reports the expiry used for cached rows.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

var (
	global     *Service
	globalOnce sync.Once
)

// NewGlobal initializes the process-wide service instance.
// Only the first call has any effect.
func NewGlobal(store EntryStore, cache ItemCache, opts ...Option) {
	globalOnce.Do(func() {
		global = New(store, cache, opts...)
	})
}

// Global returns the process-wide service instance.
// Panics if NewGlobal has not been called.
func Global() *Service {
	if global == nil {
		panic("configservice: NewGlobal must be called before Global")
	}
	return global
}

func decodeItem(ctx context.Context, item *configdb.ConfigItem) (*itemcodec.Value, error) {
	v, err := itemcodec.DecodeContext(ctx, item.ItemKey, item.ItemType, item.ItemValue)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
