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

// Package bootstrap seeds config entries from a YAML file.
package bootstrap

// SeedFile is the YAML layout of a seed import.
//
//	version: 1
//	entries:
//	  - key: site.name
//	    type: string
//	    value: Acme
//	    tag: site
type SeedFile struct {
	Version int         `yaml:"version" json:"version"`
	Entries []SeedEntry `yaml:"entries,omitempty" json:"entries,omitempty"`
}

// SeedEntry is one entry. Value is encoded for Type on import, so a json
// entry may hold a nested mapping or list.
type SeedEntry struct {
	Key   string `yaml:"key" json:"key"`
	Type  string `yaml:"type" json:"type"`
	Value any    `yaml:"value" json:"value"`
	Tag   string `yaml:"tag,omitempty" json:"tag,omitempty"`
}
