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

// Package testhelpers provisions throwaway databases for integration tests.
package testhelpers

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orlangure/gnomock"
	"github.com/orlangure/gnomock/preset/postgres"

	"github.com/cardinalhq/dbconfig/configdb"
	configdbmigrations "github.com/cardinalhq/dbconfig/configdb/migrations"
)

const (
	gnomockUser     = "dbconfig"
	gnomockPassword = "dbconfig"
	gnomockDB       = "testing_configdb"
)

// SetupTestConfigDB creates a clean test configdb database with migrations applied.
// It uses the server named by CONFIGDB_HOST when set, otherwise it starts a
// PostgreSQL container. Cleanup is registered with t.Cleanup.
func SetupTestConfigDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()
	base := baseServerURL(t)

	basePool, err := pgxpool.New(ctx, base.String())
	if err != nil {
		t.Fatalf("Failed to connect to base configdb: %v", err)
	}

	dbName := fmt.Sprintf("test_configdb_%d_%d", time.Now().Unix(), rand.Intn(10000))
	if _, err := basePool.Exec(ctx, fmt.Sprintf("CREATE DATABASE %s", dbName)); err != nil {
		basePool.Close()
		t.Fatalf("Failed to create test configdb %s: %v", dbName, err)
	}

	testURL := *base
	testURL.Path = "/" + dbName
	testPool, err := pgxpool.New(ctx, testURL.String())
	if err != nil {
		basePool.Close()
		t.Fatalf("Failed to connect to test configdb: %v", err)
	}

	if err := configdbmigrations.RunMigrationsUp(ctx, testPool); err != nil {
		testPool.Close()
		basePool.Close()
		t.Fatalf("Failed to run configdb migrations: %v", err)
	}

	t.Cleanup(func() {
		testPool.Close()
		if _, err := basePool.Exec(context.Background(), fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)); err != nil {
			slog.Error("Failed to drop test configdb", slog.String("dbName", dbName), slog.Any("error", err))
		}
		basePool.Close()
	})

	return testPool
}

// NewTestConfigDBStore creates a new configdb store connected to a test database.
func NewTestConfigDBStore(t *testing.T) *configdb.Store {
	return configdb.NewStore(SetupTestConfigDB(t))
}

func baseServerURL(t *testing.T) *url.URL {
	t.Helper()

	if host := os.Getenv("CONFIGDB_HOST"); host != "" {
		u := &url.URL{
			Scheme:   "postgresql",
			Host:     host + ":" + getEnvOrDefault("CONFIGDB_PORT", "5432"),
			Path:     "/" + getEnvOrDefault("CONFIGDB_DBNAME", gnomockDB),
			RawQuery: "sslmode=disable",
		}
		user := getEnvOrDefault("CONFIGDB_USER", os.Getenv("USER"))
		if password := os.Getenv("CONFIGDB_PASSWORD"); password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
		return u
	}

	container, err := gnomock.Start(postgres.Preset(
		postgres.WithUser(gnomockUser, gnomockPassword),
		postgres.WithDatabase(gnomockDB),
	))
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := gnomock.Stop(container); err != nil {
			slog.Error("Failed to stop postgres container", slog.Any("error", err))
		}
	})

	return &url.URL{
		Scheme:   "postgresql",
		User:     url.UserPassword(gnomockUser, gnomockPassword),
		Host:     container.DefaultAddress(),
		Path:     "/" + gnomockDB,
		RawQuery: "sslmode=disable",
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
