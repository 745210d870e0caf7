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

// Package tenancy decides how operations on shared configuration are scoped
// when the process serves more than one organization.
package tenancy

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CentralOrganizationID is the nil UUID, used for data shared by every
// organization.
var CentralOrganizationID = uuid.UUID{}

// Runner executes fn in the central, tenant-neutral scope.
// Implementations must return fn's error unchanged.
type Runner interface {
	RunCentral(ctx context.Context, fn func(context.Context) error) error
}

// Direct is the Runner used when multi-tenancy is not in play.
type Direct struct{}

func (Direct) RunCentral(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// CentralFunc adapts an external tenancy system's central runner.
type CentralFunc func(ctx context.Context, fn func(context.Context) error) error

func (f CentralFunc) RunCentral(ctx context.Context, fn func(context.Context) error) error {
	return f(ctx, fn)
}

// ContextCentral rescopes the context to CentralOrganizationID before
// running fn. It only marks the context for downstream routing: the
// stores in this module hold a single shared table and do not route on
// OrganizationID, so reads see the same rows as Direct. The resolver
// reports the scope on its store-query metric and debug log.
type ContextCentral struct{}

func (ContextCentral) RunCentral(ctx context.Context, fn func(context.Context) error) error {
	return fn(WithOrganizationID(ctx, CentralOrganizationID))
}

// Run calls fn through r and returns its result.
func Run[T any](ctx context.Context, r Runner, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := r.RunCentral(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

const (
	ModeNone    = "none"
	ModeCentral = "central"
)

// NewRunner picks the strategy for a configured mode. It is meant to be
// called once at startup.
func NewRunner(mode string) (Runner, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", ModeNone:
		return Direct{}, nil
	case ModeCentral:
		return ContextCentral{}, nil
	default:
		return nil, fmt.Errorf("unknown tenancy mode %q (expected %q or %q)", mode, ModeNone, ModeCentral)
	}
}

type orgKey struct{}

// WithOrganizationID returns a context scoped to the given organization.
func WithOrganizationID(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgKey{}, orgID)
}

// OrganizationID returns the organization the context is scoped to.
func OrganizationID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(orgKey{}).(uuid.UUID)
	return id, ok
}

// IsCentral reports whether ctx is scoped to the central organization.
func IsCentral(ctx context.Context) bool {
	id, ok := OrganizationID(ctx)
	return ok && id == CentralOrganizationID
}
