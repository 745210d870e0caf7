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

package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cardinalhq/dbconfig/internal/tenancy"
)

// Config aggregates configuration for the application.
type Config struct {
	Cache   CacheConfig   `mapstructure:"cache"`
	Store   StoreConfig   `mapstructure:"store"`
	Tenancy TenancyConfig `mapstructure:"tenancy"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend string        `mapstructure:"backend"`
	TTL     time.Duration `mapstructure:"ttl"`
	// Capacity bounds the in-memory cache. Zero means unbounded.
	Capacity uint64 `mapstructure:"capacity"`
	// RedisURL is a redis:// URL, required for the redis backend.
	RedisURL  string `mapstructure:"redis_url"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// StoreConfig selects the Entry Store. PostgreSQL connection details come
// from the CONFIGDB_* environment variables.
type StoreConfig struct {
	Driver     string `mapstructure:"driver"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

type TenancyConfig struct {
	Mode string `mapstructure:"mode"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			Backend:  CacheBackendMemory,
			TTL:      DefaultCacheTTL,
			Capacity: DefaultCacheCapacity,
		},
		Store: StoreConfig{
			Driver:     StoreDriverPostgres,
			SQLitePath: DefaultSQLitePath,
		},
		Tenancy: TenancyConfig{
			Mode: tenancy.ModeNone,
		},
	}
}

// Load reads configuration from files and environment variables.
// Environment variables use the prefix "DBCONFIG" and the dot character
// in keys is replaced by an underscore. For example, "cache.ttl" becomes
// "DBCONFIG_CACHE_TTL".
func Load() (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.SetEnvPrefix("DBCONFIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v, &cfg)
	_ = v.ReadInConfig()

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.normalize()
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Tenancy.Mode = strings.ToLower(strings.TrimSpace(c.Tenancy.Mode))
}

// Validate reports settings that cannot be wired.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required for the %s cache backend", CacheBackendRedis)
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch c.Store.Driver {
	case StoreDriverPostgres:
	case StoreDriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the %s driver", StoreDriverSQLite)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}

	if _, err := tenancy.NewRunner(c.Tenancy.Mode); err != nil {
		return err
	}
	return nil
}

// bindEnvs registers all keys within cfg so that viper will look up
// corresponding environment variables when unmarshalling.
func bindEnvs(v *viper.Viper, cfg any, parts ...string) {
	val := reflect.ValueOf(cfg)
	typ := reflect.TypeOf(cfg)
	if typ.Kind() == reflect.Ptr {
		val = val.Elem()
		typ = typ.Elem()
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" {
			tag = strings.ToLower(f.Name)
		}
		key := append(parts, tag)
		if f.Type.Kind() == reflect.Struct {
			bindEnvs(v, val.Field(i).Interface(), key...)
			continue
		}
		_ = v.BindEnv(strings.Join(key, "."))
	}
}
