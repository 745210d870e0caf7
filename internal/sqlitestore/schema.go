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

package sqlitestore

// schemaStatements mirror configdb/migrations for a single-node SQLite file.
// Timestamps are stored as UTC text in timeLayout.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS config_items (
  id         TEXT PRIMARY KEY,
  item_key   TEXT NOT NULL,
  item_type  TEXT NOT NULL,
  item_value TEXT NOT NULL DEFAULT '',
  item_tag   TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL,
  deleted_at TEXT
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS config_items_item_key_live_idx
  ON config_items (item_key) WHERE deleted_at IS NULL`,
	`CREATE INDEX IF NOT EXISTS config_items_item_tag_idx
  ON config_items (item_tag)`,
}

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const itemColumns = `id, item_key, item_type, item_value, item_tag, created_at, updated_at, deleted_at`

const getConfigItemByKey = `SELECT ` + itemColumns + ` FROM config_items
WHERE item_key = ? AND deleted_at IS NULL`

// getConfigItemsByKeys takes the placeholder list at call time.
const getConfigItemsByKeys = `SELECT ` + itemColumns + ` FROM config_items
WHERE item_key IN (%s) AND deleted_at IS NULL`

const listConfigItemsByTag = `SELECT ` + itemColumns + ` FROM config_items
WHERE item_tag = ? AND deleted_at IS NULL
ORDER BY item_key`

const softDeleteConfigItem = `UPDATE config_items
SET deleted_at = ?, updated_at = ?
WHERE item_key = ? AND deleted_at IS NULL`

const upsertConfigItem = `INSERT INTO config_items
  (id, item_key, item_type, item_value, item_tag, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (item_key) WHERE deleted_at IS NULL
DO UPDATE SET
  item_type = excluded.item_type,
  item_value = excluded.item_value,
  item_tag = excluded.item_tag,
  updated_at = excluded.updated_at
RETURNING ` + itemColumns
