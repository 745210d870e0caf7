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
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cardinalhq/dbconfig/configdb"
)

// mockStore is an in-memory EntryStore with call counters.
type mockStore struct {
	mu    sync.Mutex
	items map[string]configdb.ConfigItem

	findCallCount     atomic.Int32
	findManyCallCount atomic.Int32
	upsertCallCount   atomic.Int32
	lastFindManyKeys  []string

	findErr   error
	upsertErr error
	// failUpsertOn makes UpsertConfigItem fail for one key.
	failUpsertOn string
}

func newMockStore() *mockStore {
	return &mockStore{items: make(map[string]configdb.ConfigItem)}
}

// put stores a row as-is, bypassing the codec.
func (m *mockStore) put(key, itemType, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = configdb.ConfigItem{
		ID:        uuid.New(),
		ItemKey:   key,
		ItemType:  itemType,
		ItemValue: value,
	}
}

func (m *mockStore) UpsertConfigItem(_ context.Context, arg configdb.UpsertConfigItemParams) (configdb.ConfigItem, error) {
	m.upsertCallCount.Add(1)
	if m.upsertErr != nil {
		return configdb.ConfigItem{}, m.upsertErr
	}
	if m.failUpsertOn != "" && m.failUpsertOn == arg.ItemKey {
		return configdb.ConfigItem{}, errUpsert
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	item, ok := m.items[arg.ItemKey]
	if !ok {
		item = configdb.ConfigItem{ID: uuid.New(), ItemKey: arg.ItemKey, CreatedAt: now}
	}
	item.ItemType = arg.ItemType
	item.ItemValue = arg.ItemValue
	item.ItemTag = arg.ItemTag
	item.UpdatedAt = now
	m.items[arg.ItemKey] = item
	return item, nil
}

func (m *mockStore) FindConfigItemByKey(_ context.Context, itemKey string) (*configdb.ConfigItem, error) {
	m.findCallCount.Add(1)
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[itemKey]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *mockStore) FindConfigItemsByKeys(_ context.Context, itemKeys []string) ([]configdb.ConfigItem, error) {
	m.findManyCallCount.Add(1)
	if m.findErr != nil {
		return nil, m.findErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastFindManyKeys = append([]string(nil), itemKeys...)
	var items []configdb.ConfigItem
	for _, k := range itemKeys {
		if item, ok := m.items[k]; ok {
			items = append(items, item)
		}
	}
	return items, nil
}

func (m *mockStore) ListConfigItemsByTag(_ context.Context, itemTag string) ([]configdb.ConfigItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var items []configdb.ConfigItem
	for _, item := range m.items {
		if item.ItemTag == itemTag {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemKey < items[j].ItemKey })
	return items, nil
}

func (m *mockStore) SoftDeleteConfigItem(_ context.Context, itemKey string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[itemKey]; !ok {
		return 0, nil
	}
	delete(m.items, itemKey)
	return 1, nil
}

type fakeEntry struct {
	item    *configdb.ConfigItem
	expires time.Time
}

// fakeCache is a Cache with a manual clock.
type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]fakeEntry
	lastTTL time.Duration

	getErr error
	// keyErrs fails Get for individual keys.
	keyErrs map[string]error
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC),
		entries: make(map[string]fakeEntry),
	}
}

func (c *fakeCache) Get(_ context.Context, key string) (*configdb.ConfigItem, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.keyErrs[key]; err != nil {
		return nil, false, err
	}
	e, ok := c.entries[key]
	if !ok || !c.now.Before(e.expires) {
		return nil, false, nil
	}
	return e.item, true, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value *configdb.ConfigItem, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastTTL = ttl
	c.entries[key] = fakeEntry{item: value, expires: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]fakeEntry)
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
