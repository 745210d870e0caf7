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
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/dbconfig/internal/itemcodec"
)

func TestDescribe(t *testing.T) {
	svc, store, cache := newTestService()
	ctx := context.Background()
	store.put("flag", "boolean", "0")

	d, err := svc.Describe(ctx, "flag")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "flag", d.ItemKey)
	assert.Equal(t, "boolean", d.ItemType)
	assert.Equal(t, "0", d.ItemValue)
	b, ok := d.ItemValueDesc.AsBool()
	require.True(t, ok)
	assert.False(t, b)

	assert.Empty(t, cache.entries)

	missing, err := svc.Describe(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDescribe_UnknownType(t *testing.T) {
	svc, store, _ := newTestService()
	store.put("bad", "enum-unknown", "x")

	_, err := svc.Describe(context.Background(), "bad")
	assert.ErrorIs(t, err, itemcodec.ErrUnknownItemType)
}

func TestDetail_MarshalJSON(t *testing.T) {
	svc, store, _ := newTestService()
	store.put("obj", "object", `{"a": [1, 2]}`)

	d, err := svc.Describe(context.Background(), "obj")
	require.NoError(t, err)

	out, err := json.Marshal(d)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, d.ID.String(), decoded["id"])
	assert.Equal(t, `{"a": [1, 2]}`, decoded["item_value"])
	assert.Equal(t, map[string]any{"a": []any{float64(1), float64(2)}}, decoded["item_value_desc"])
}

func TestListByTag(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.AddEntries(ctx, []Entry{
		{Key: "z", Type: "string", Value: "Z", Tag: "group"},
		{Key: "a", Type: "bool", Value: true, Tag: "group"},
		{Key: "other", Type: "string", Value: "O", Tag: "elsewhere"},
	})
	require.NoError(t, err)

	details, err := svc.ListByTag(ctx, "group")
	require.NoError(t, err)
	require.Len(t, details, 2)
	assert.Equal(t, "a", details[0].ItemKey)
	assert.Equal(t, "z", details[1].ItemKey)

	none, err := svc.ListByTag(ctx, "nothing")
	require.NoError(t, err)
	assert.Empty(t, none)
}
