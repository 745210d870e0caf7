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

// Package sqlitestore is the single-node Entry Store on pure-Go SQLite. It
// offers the same lookups as configdb.Store so the resolver can run without
// a PostgreSQL server.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cardinalhq/dbconfig/configdb"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Store is a configdb-compatible Entry Store backed by SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for created/updated/deleted stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens (or creates) the SQLite database at path and ensures the schema
// exists. Use ":memory:" for a private in-memory database.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %q: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	store := New(db, opts...)
	if err := store.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an already opened database. The schema is not touched.
func New(db *sql.DB, opts ...Option) *Store {
	s := &Store{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) ensureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply sqlite schema: %w", err)
		}
	}
	return nil
}

func (s *Store) stamp() string {
	return s.now().UTC().Format(timeLayout)
}

// UpsertConfigItem inserts the item or updates the live row with the same key
// in place, keeping its id and created_at.
func (s *Store) UpsertConfigItem(ctx context.Context, arg configdb.UpsertConfigItemParams) (configdb.ConfigItem, error) {
	now := s.stamp()
	row := s.db.QueryRowContext(ctx, upsertConfigItem,
		uuid.NewString(),
		arg.ItemKey,
		arg.ItemType,
		arg.ItemValue,
		arg.ItemTag,
		now,
		now,
	)
	item, err := scanItem(row)
	if err != nil {
		return configdb.ConfigItem{}, fmt.Errorf("failed to upsert config item %q: %w", arg.ItemKey, err)
	}
	return item, nil
}

// FindConfigItemByKey returns the live row for itemKey, or nil if there is none.
func (s *Store) FindConfigItemByKey(ctx context.Context, itemKey string) (*configdb.ConfigItem, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, getConfigItemByKey, itemKey))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get config item %q: %w", itemKey, err)
	}
	return &item, nil
}

// keysPerQuery bounds the IN list so a batch stays under SQLite's bound
// parameter limit (999 on builds before 3.32).
var keysPerQuery = 500

// FindConfigItemsByKeys returns the live rows among itemKeys. Large key
// sets are split across several queries.
func (s *Store) FindConfigItemsByKeys(ctx context.Context, itemKeys []string) ([]configdb.ConfigItem, error) {
	keys := uniqueKeys(itemKeys)
	var items []configdb.ConfigItem
	for start := 0; start < len(keys); start += keysPerQuery {
		chunk := keys[start:min(start+keysPerQuery, len(keys))]
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunk)), ",")
		args := make([]any, len(chunk))
		for i, k := range chunk {
			args[i] = k
		}
		found, err := s.queryItems(ctx, fmt.Sprintf(getConfigItemsByKeys, placeholders), args...)
		if err != nil {
			return nil, fmt.Errorf("failed to get %d config items: %w", len(itemKeys), err)
		}
		items = append(items, found...)
	}
	return items, nil
}

func uniqueKeys(keys []string) []string {
	seen := mapset.NewThreadUnsafeSetWithSize[string](len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if seen.Add(k) {
			out = append(out, k)
		}
	}
	return out
}

// ListConfigItemsByTag returns the live rows carrying itemTag, ordered by key.
func (s *Store) ListConfigItemsByTag(ctx context.Context, itemTag string) ([]configdb.ConfigItem, error) {
	items, err := s.queryItems(ctx, listConfigItemsByTag, itemTag)
	if err != nil {
		return nil, fmt.Errorf("failed to list config items for tag %q: %w", itemTag, err)
	}
	return items, nil
}

// SoftDeleteConfigItem marks the live row for itemKey deleted and reports how
// many rows changed.
func (s *Store) SoftDeleteConfigItem(ctx context.Context, itemKey string) (int64, error) {
	now := s.stamp()
	res, err := s.db.ExecContext(ctx, softDeleteConfigItem, now, now, itemKey)
	if err != nil {
		return 0, fmt.Errorf("failed to delete config item %q: %w", itemKey, err)
	}
	return res.RowsAffected()
}

func (s *Store) Close() {
	_ = s.db.Close()
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]configdb.ConfigItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []configdb.ConfigItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (configdb.ConfigItem, error) {
	var (
		item                 configdb.ConfigItem
		id                   string
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)
	if err := row.Scan(
		&id,
		&item.ItemKey,
		&item.ItemType,
		&item.ItemValue,
		&item.ItemTag,
		&createdAt,
		&updatedAt,
		&deletedAt,
	); err != nil {
		return configdb.ConfigItem{}, err
	}

	var err error
	if item.ID, err = uuid.Parse(id); err != nil {
		return configdb.ConfigItem{}, fmt.Errorf("invalid id %q: %w", id, err)
	}
	if item.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return configdb.ConfigItem{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if item.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return configdb.ConfigItem{}, fmt.Errorf("invalid updated_at %q: %w", updatedAt, err)
	}
	if deletedAt.Valid {
		t, err := time.Parse(timeLayout, deletedAt.String)
		if err != nil {
			return configdb.ConfigItem{}, fmt.Errorf("invalid deleted_at %q: %w", deletedAt.String, err)
		}
		item.DeletedAt = &t
	}
	return item, nil
}
