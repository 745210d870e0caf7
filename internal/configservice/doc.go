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

// Package configservice resolves typed configuration entries through a
// read-through cache in front of the Entry Store.
//
// # Storage Model
//
// Each entry is one config_items row: a unique key, a declared item type,
// the value as text and a free-form tag. Deleted rows are filtered by the
// store and never reach this package.
//
// # Caching
//
// Single reads cache the raw row under CacheKeyPrefix+key for the TTL and
// decode after the cache, so a row with an unknown type fails on every read.
// A missing key is never left in the cache: the absent marker is pulled
// right after the lookup.
//
// Batch reads first check the cache under the bare key. Only when some key
// is unresolved is the whole requested set fetched from the store, and the
// unresolved keys then go through the same prefixed read-through as single
// reads.
//
// Writes go straight to the store and do not touch the cache, so a cached
// value stays in place until it expires or the cache is cleared.
package configservice
