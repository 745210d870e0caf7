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

package configservice

import (
	"context"
	"log"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/cardinalhq/dbconfig/internal/logctx"
	"github.com/cardinalhq/dbconfig/internal/tenancy"
)

const (
	lookupHit      = "hit"
	lookupMiss     = "miss"
	lookupNegative = "negative"
	lookupFastPath = "fastpath"
)

var tracer = otel.Tracer("github.com/cardinalhq/dbconfig/internal/configservice")

var (
	cacheLookups metric.Int64Counter
	storeQueries metric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/dbconfig/internal/configservice")

	var err error

	cacheLookups, err = meter.Int64Counter(
		"dbconfig.cache.lookups",
		metric.WithDescription("Number of config cache lookups by result"),
	)
	if err != nil {
		log.Fatalf("failed to create cache.lookups counter: %v", err)
	}

	storeQueries, err = meter.Int64Counter(
		"dbconfig.store.queries",
		metric.WithDescription("Number of Entry Store calls by operation"),
	)
	if err != nil {
		log.Fatalf("failed to create store.queries counter: %v", err)
	}
}

func recordLookup(ctx context.Context, result string) {
	cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

const (
	scopeCentral = "central"
	scopeDefault = "default"
)

// storeScope names the tenant scope a store call runs in.
func storeScope(ctx context.Context) string {
	if tenancy.IsCentral(ctx) {
		return scopeCentral
	}
	return scopeDefault
}

func recordStoreQuery(ctx context.Context, op string) {
	scope := storeScope(ctx)
	storeQueries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("scope", scope),
	))
	logctx.FromContext(ctx).Debug("Querying entry store", slog.String("op", op), slog.String("scope", scope))
}

// startSpan opens a resolver span. The returned func ends it and records err.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(err error)) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}
