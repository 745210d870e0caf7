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

	"github.com/google/uuid"

	"github.com/cardinalhq/dbconfig/configdb"
	"github.com/cardinalhq/dbconfig/internal/itemcodec"
)

// Detail is the operator view of one entry: the stored text next to its
// decoded form.
type Detail struct {
	ID            uuid.UUID       `json:"id" yaml:"id"`
	ItemKey       string          `json:"item_key" yaml:"item_key"`
	ItemType      string          `json:"item_type" yaml:"item_type"`
	ItemValue     string          `json:"item_value" yaml:"item_value"`
	ItemTag       string          `json:"item_tag" yaml:"item_tag"`
	ItemValueDesc itemcodec.Value `json:"item_value_desc" yaml:"item_value_desc"`
}

func newDetail(ctx context.Context, item *configdb.ConfigItem) (Detail, error) {
	v, err := itemcodec.DecodeContext(ctx, item.ItemKey, item.ItemType, item.ItemValue)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		ID:            item.ID,
		ItemKey:       item.ItemKey,
		ItemType:      item.ItemType,
		ItemValue:     item.ItemValue,
		ItemTag:       item.ItemTag,
		ItemValueDesc: v,
	}, nil
}

// Describe reads itemKey straight from the store, bypassing the cache.
// It returns nil when there is no live entry.
func (s *Service) Describe(ctx context.Context, itemKey string) (*Detail, error) {
	recordStoreQuery(ctx, "find_by_key")
	item, err := s.store.FindConfigItemByKey(ctx, itemKey)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	d, err := newDetail(ctx, item)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListByTag returns every live entry carrying tag, ordered by key.
func (s *Service) ListByTag(ctx context.Context, tag string) ([]Detail, error) {
	recordStoreQuery(ctx, "list_by_tag")
	items, err := s.store.ListConfigItemsByTag(ctx, tag)
	if err != nil {
		return nil, err
	}
	details := make([]Detail, 0, len(items))
	for i := range items {
		d, err := newDetail(ctx, &items[i])
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}
