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

package migrations

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cardinalhq/dbconfig/migrations"
)

const dbName = "configdb"

// CheckExpectedVersion verifies that the configdb database is at the expected
// migration version using default options (wait mode).
func CheckExpectedVersion(ctx context.Context, pool *pgxpool.Pool) error {
	return CheckVersion(ctx, pool)
}

// CheckVersion verifies that the configdb database is at the expected
// migration version with configurable options.
func CheckVersion(ctx context.Context, pool *pgxpool.Pool, options ...migrations.CheckOption) error {
	if !migrationCheckEnabledFromEnv() {
		slog.Debug("Migration version checking disabled for configdb")
		return nil
	}

	opts := migrations.Apply(options...)
	if opts.Mode == migrations.CheckModeSkip {
		slog.Debug("Migration version checking skipped for configdb")
		return nil
	}
	applyEnvironmentOverrides(&opts)

	expected, err := latestMigrationVersion(migrationFiles)
	if err != nil {
		return fmt.Errorf("failed to extract expected migration version for %s: %w", dbName, err)
	}

	current := func(ctx context.Context) (uint, bool, error) {
		return currentMigrationVersion(pool)
	}
	return waitForVersion(ctx, expected, current, opts)
}

func migrationCheckEnabledFromEnv() bool {
	if val := os.Getenv("CONFIGDB_MIGRATION_CHECK_ENABLED"); val != "" {
		return strings.ToLower(val) == "true"
	}
	return true
}

func applyEnvironmentOverrides(opts *migrations.CheckOptions) {
	if val := os.Getenv("MIGRATION_CHECK_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			opts.Timeout = d
		}
	}
	if val := os.Getenv("MIGRATION_CHECK_RETRY_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			opts.RetryInterval = d
		}
	}
	if val := os.Getenv("MIGRATION_CHECK_ALLOW_DIRTY"); val != "" {
		opts.AllowDirty = strings.ToLower(val) == "true"
	}
}

// latestMigrationVersion returns the highest version among "<version>_<name>.up.sql" files.
func latestMigrationVersion(fsys fs.FS) (uint, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return 0, fmt.Errorf("failed to read migration directory: %w", err)
	}

	var maxVersion uint
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			continue
		}
		maxVersion = max(maxVersion, uint(version))
	}

	if maxVersion == 0 {
		return 0, errors.New("no valid migration files found")
	}
	return maxVersion, nil
}

type versionFunc func(ctx context.Context) (version uint, dirty bool, err error)

// waitForVersion polls current until it reports expected. In warn mode a
// mismatch is logged once and tolerated.
func waitForVersion(ctx context.Context, expected uint, current versionFunc, opts migrations.CheckOptions) error {
	slog.Info("Checking migration version",
		slog.String("database", dbName),
		slog.Uint64("expected_version", uint64(expected)),
		slog.String("mode", opts.Mode.String()),
		slog.Duration("timeout", opts.Timeout))

	deadline := time.Now().Add(opts.Timeout)
	ticker := time.NewTicker(opts.RetryInterval)
	defer ticker.Stop()

	for {
		version, dirty, err := current(ctx)
		if err != nil {
			return fmt.Errorf("failed to get current migration version for %s: %w", dbName, err)
		}

		if dirty && !opts.AllowDirty {
			return fmt.Errorf("database %s migration is in dirty state, please fix before proceeding", dbName)
		}
		if dirty {
			slog.Warn("Database migration is dirty but allowed to continue", slog.String("database", dbName))
		}

		if version == expected {
			slog.Info("Migration version check passed",
				slog.String("database", dbName),
				slog.Uint64("version", uint64(version)))
			return nil
		}

		mismatch := fmt.Errorf("database %s is at version %d, expected %d", dbName, version, expected)
		if opts.Mode == migrations.CheckModeWarn {
			slog.Warn("Migration version mismatch, continuing", slog.Any("error", mismatch))
			return nil
		}
		if version > expected {
			return fmt.Errorf("%w - you may need to update the application", mismatch)
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("timeout waiting for migrations to complete: %w", mismatch)
		}

		slog.Info("Waiting for migrations to complete",
			slog.String("database", dbName),
			slog.Uint64("current_version", uint64(version)),
			slog.Uint64("expected_version", uint64(expected)),
			slog.Duration("remaining_timeout", time.Until(deadline)))

		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled while waiting for %s migrations: %w", dbName, ctx.Err())
		case <-ticker.C:
		}
	}
}

func currentMigrationVersion(pool *pgxpool.Pool) (uint, bool, error) {
	m, cleanup, err := newMigrate(pool)
	if err != nil {
		return 0, false, err
	}
	defer cleanup()

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, dirty, nil
}
