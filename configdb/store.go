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

package configdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreFull is the Querier plus the lookups that report absence as a nil
// result instead of pgx.ErrNoRows.
type StoreFull interface {
	Querier
	FindConfigItemByKey(ctx context.Context, itemKey string) (*ConfigItem, error)
	FindConfigItemsByKeys(ctx context.Context, itemKeys []string) ([]ConfigItem, error)
	Close()
}

// Store provides all functions to execute db queries
type Store struct {
	*Queries
	connPool *pgxpool.Pool
}

var _ StoreFull = (*Store)(nil)

// NewStore creates a new Store
func NewStore(connPool *pgxpool.Pool) *Store {
	return &Store{
		Queries:  New(connPool),
		connPool: connPool,
	}
}

// FindConfigItemByKey returns the live row for itemKey, or nil if there is none.
func (store *Store) FindConfigItemByKey(ctx context.Context, itemKey string) (*ConfigItem, error) {
	item, err := store.GetConfigItemByKey(ctx, itemKey)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get config item %q: %w", itemKey, err)
	}
	return &item, nil
}

// FindConfigItemsByKeys returns the live rows among itemKeys. Keys with no
// row are simply missing from the result.
func (store *Store) FindConfigItemsByKeys(ctx context.Context, itemKeys []string) ([]ConfigItem, error) {
	if len(itemKeys) == 0 {
		return nil, nil
	}
	items, err := store.GetConfigItemsByKeys(ctx, itemKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to get %d config items: %w", len(itemKeys), err)
	}
	return items, nil
}

func (store *Store) Close() {
	if store.connPool != nil {
		store.connPool.Close()
	}
}
