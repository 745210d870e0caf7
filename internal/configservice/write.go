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

	"github.com/hashicorp/go-multierror"

	"github.com/cardinalhq/dbconfig/configdb"
	"github.com/cardinalhq/dbconfig/internal/itemcodec"
)

// ErrEmptyKey is returned for writes without an item key.
var ErrEmptyKey = errors.New("config item key is required")

// Entry is one write request for AddEntries.
type Entry struct {
	Key   string
	Type  string
	Value any
	Tag   string
}

func (e Entry) params() (configdb.UpsertConfigItemParams, error) {
	if e.Key == "" {
		return configdb.UpsertConfigItemParams{}, ErrEmptyKey
	}
	encoded, err := itemcodec.Encode(e.Type, e.Value)
	if err != nil {
		return configdb.UpsertConfigItemParams{}, fmt.Errorf("config item %q: %w", e.Key, err)
	}
	return configdb.UpsertConfigItemParams{
		ItemKey:   e.Key,
		ItemType:  e.Type,
		ItemValue: encoded,
		ItemTag:   e.Tag,
	}, nil
}

// AddEntry creates or updates the entry for itemKey. The value is encoded
// for itemType before it is stored. The cache is not touched.
func (s *Service) AddEntry(ctx context.Context, itemKey, itemType string, itemValue any, itemTag string) (configdb.ConfigItem, error) {
	params, err := Entry{Key: itemKey, Type: itemType, Value: itemValue, Tag: itemTag}.params()
	if err != nil {
		return configdb.ConfigItem{}, err
	}
	return s.upsert(ctx, params)
}

// AddEntries validates every entry, then writes them in order. If any entry
// is invalid nothing is written and the returned error lists every problem.
// A store failure stops the run and returns the items written before it.
func (s *Service) AddEntries(ctx context.Context, entries []Entry) ([]configdb.ConfigItem, error) {
	var errs *multierror.Error
	params := make([]configdb.UpsertConfigItemParams, 0, len(entries))
	for i, e := range entries {
		p, err := e.params()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		params = append(params, p)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	items := make([]configdb.ConfigItem, 0, len(params))
	for _, p := range params {
		item, err := s.upsert(ctx, p)
		if err != nil {
			return items, err
		}
		items = append(items, item)
	}
	return items, nil
}

// SetStringValue stores a string entry. A nil value is stored as "".
func (s *Service) SetStringValue(ctx context.Context, tag, key string, value *string) (configdb.ConfigItem, error) {
	var v string
	if value != nil {
		v = *value
	}
	return s.AddEntry(ctx, key, string(itemcodec.TypeString), v, tag)
}

func (s *Service) SetBoolValue(ctx context.Context, tag, key string, value bool) (configdb.ConfigItem, error) {
	return s.AddEntry(ctx, key, string(itemcodec.TypeBool), value, tag)
}

// SetJSONValue stores value as an indented JSON document.
func (s *Service) SetJSONValue(ctx context.Context, tag, key string, value any) (configdb.ConfigItem, error) {
	return s.AddEntry(ctx, key, string(itemcodec.TypeJSON), value, tag)
}

// DeleteEntry soft-deletes the live entry for itemKey and reports whether
// one existed. Like the other writes it leaves the cache alone.
func (s *Service) DeleteEntry(ctx context.Context, itemKey string) (bool, error) {
	if itemKey == "" {
		return false, ErrEmptyKey
	}
	recordStoreQuery(ctx, "soft_delete")
	n, err := s.store.SoftDeleteConfigItem(ctx, itemKey)
	if err != nil {
		return false, fmt.Errorf("failed to delete config item %q: %w", itemKey, err)
	}
	return n > 0, nil
}

func (s *Service) upsert(ctx context.Context, params configdb.UpsertConfigItemParams) (configdb.ConfigItem, error) {
	recordStoreQuery(ctx, "upsert")
	item, err := s.store.UpsertConfigItem(ctx, params)
	if err != nil {
		return configdb.ConfigItem{}, fmt.Errorf("failed to store config item %q: %w", params.ItemKey, err)
	}
	return item, nil
}
