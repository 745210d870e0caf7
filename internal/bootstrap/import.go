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

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cardinalhq/dbconfig/configdb"
	"github.com/cardinalhq/dbconfig/internal/configservice"
	"github.com/cardinalhq/dbconfig/internal/logctx"
)

const SupportedVersion = 1

// EntryWriter is the part of configservice.Service an import needs.
type EntryWriter interface {
	AddEntries(ctx context.Context, entries []configservice.Entry) ([]configdb.ConfigItem, error)
}

// ImportFromYAML imports the seed file at filePath through w.
func ImportFromYAML(ctx context.Context, filePath string, w EntryWriter) ([]configdb.ConfigItem, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	logctx.FromContext(ctx).Info("Starting seed import from YAML", slog.String("file", filePath))
	return Import(ctx, f, w)
}

// Import decodes a seed file from r and writes its entries. All entries are
// validated before the first write.
func Import(ctx context.Context, r io.Reader, w EntryWriter) ([]configdb.ConfigItem, error) {
	ll := logctx.FromContext(ctx)

	seed, err := decodeSeed(r)
	if err != nil {
		return nil, err
	}

	entries := make([]configservice.Entry, 0, len(seed.Entries))
	for _, e := range seed.Entries {
		entries = append(entries, configservice.Entry{
			Key:   e.Key,
			Type:  e.Type,
			Value: e.Value,
			Tag:   e.Tag,
		})
	}

	items, err := w.AddEntries(ctx, entries)
	if err != nil {
		return items, fmt.Errorf("failed to import seed entries: %w", err)
	}

	ll.Info("Seed import completed", slog.Int("entries", len(items)))
	return items, nil
}

func decodeSeed(r io.Reader) (*SeedFile, error) {
	var seed SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(false) // Allow unknown fields for forward compatibility
	if err := dec.Decode(&seed); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty seed file")
		}
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if seed.Version != SupportedVersion {
		return nil, fmt.Errorf("unsupported seed version %d, expected %d", seed.Version, SupportedVersion)
	}
	return &seed, nil
}
