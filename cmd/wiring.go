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

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/dbconfig/config"
	"github.com/cardinalhq/dbconfig/configdb"
	"github.com/cardinalhq/dbconfig/internal/configservice"
	"github.com/cardinalhq/dbconfig/internal/dbopen"
	"github.com/cardinalhq/dbconfig/internal/kvcache"
	"github.com/cardinalhq/dbconfig/internal/logctx"
	"github.com/cardinalhq/dbconfig/internal/sqlitestore"
	"github.com/cardinalhq/dbconfig/internal/tenancy"
)

// withService loads configuration, wires the service and runs fn with it.
// Everything opened here is closed before returning.
func withService(c *cobra.Command, fn func(ctx context.Context, svc *configservice.Service) error) error {
	ctx, shutdown, err := setupTelemetry("dbconfig", c.ErrOrStderr())
	defer func() {
		if err := shutdown(); err != nil {
			slog.Warn("Telemetry shutdown failed", slog.Any("error", err))
		}
	}()
	if err != nil {
		return err
	}

	ctx = logctx.WithAttrs(ctx, slog.String("command", c.Name()))

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc, closeAll, err := openService(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAll()

	return fn(ctx, svc)
}

func openService(ctx context.Context, cfg *config.Config) (*configservice.Service, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	runner, err := tenancy.NewRunner(cfg.Tenancy.Mode)
	if err != nil {
		return nil, nil, err
	}

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, nil, err
	}

	cache, closeCache, err := openCache(cfg.Cache)
	if err != nil {
		closeStore()
		return nil, nil, err
	}

	logctx.FromContext(ctx).Debug("Config service wired",
		slog.String("storeDriver", cfg.Store.Driver),
		slog.String("cacheBackend", cfg.Cache.Backend),
		slog.Duration("ttl", cfg.Cache.TTL),
		slog.String("tenancyMode", cfg.Tenancy.Mode))

	svc := configservice.New(store, cache,
		configservice.WithTTL(cfg.Cache.TTL),
		configservice.WithRunner(runner),
	)
	return svc, func() {
		closeCache()
		closeStore()
	}, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (configservice.EntryStore, func(), error) {
	switch cfg.Driver {
	case config.StoreDriverSQLite:
		store, err := sqlitestore.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		var opts dbopen.Options
		if skipMigrationCheck {
			opts = dbopen.SkipMigrationCheck()
		}
		store, err := configdb.ConfigDBStore(ctx, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to configdb: %w", err)
		}
		return store, store.Close, nil
	}
}

func openCache(cfg config.CacheConfig) (configservice.ItemCache, func(), error) {
	switch cfg.Backend {
	case config.CacheBackendRedis:
		var opts []kvcache.RedisOption
		if cfg.KeyPrefix != "" {
			opts = append(opts, kvcache.WithKeyPrefix(cfg.KeyPrefix))
		}
		cache, err := kvcache.NewRedisCacheFromURL[*configdb.ConfigItem](cfg.RedisURL, opts...)
		if err != nil {
			return nil, nil, err
		}
		return cache, func() {
			if err := cache.Close(); err != nil {
				slog.Warn("Failed to close redis cache", slog.Any("error", err))
			}
		}, nil
	default:
		cache := kvcache.NewTTLCache[*configdb.ConfigItem](cfg.Capacity)
		return cache, cache.Close, nil
	}
}
