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

package itemcodec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cardinalhq/dbconfig/internal/logctx"
)

// ItemType is the declared type stored in the item_type column.
type ItemType string

const (
	TypeString  ItemType = "string"
	TypeBool    ItemType = "bool"
	TypeBoolean ItemType = "boolean"
	TypeArray   ItemType = "array"
	TypeJSON    ItemType = "json"
	TypeObject  ItemType = "object"
)

// Kind maps the declared type onto its value family.
func (t ItemType) Kind() (Kind, bool) {
	switch t {
	case TypeString:
		return KindString, true
	case TypeBool, TypeBoolean:
		return KindBool, true
	case TypeArray, TypeJSON, TypeObject:
		return KindJSON, true
	default:
		return 0, false
	}
}

// ErrUnknownItemType marks a row whose item_type is not one of the
// recognized families. It indicates corrupt data and must not be ignored.
var ErrUnknownItemType = errors.New("unknown key type")

// UnknownTypeError carries the offending row for ErrUnknownItemType.
type UnknownTypeError struct {
	Key   string
	Type  string
	Value string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown key %s type %s of value %s", e.Key, e.Type, e.Value)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownItemType
}

// Truthy applies the loose boolean coercion used for stored booleans:
// the empty string and "0" are false, every other string is true.
func Truthy(raw string) bool {
	return raw != "" && raw != "0"
}

// Decode turns a stored (type, value) pair into a Value.
func Decode(key, itemType, raw string) (Value, error) {
	return DecodeContext(context.Background(), key, itemType, raw)
}

// DecodeContext is Decode with malformed JSON reported through the
// context's logger. JSON numbers decode as json.Number so integers
// wider than a float64 mantissa survive a round trip.
func DecodeContext(ctx context.Context, key, itemType, raw string) (Value, error) {
	kind, ok := ItemType(itemType).Kind()
	if !ok {
		return Value{}, &UnknownTypeError{Key: key, Type: itemType, Value: raw}
	}

	switch kind {
	case KindString:
		return StringValue(raw), nil
	case KindBool:
		return BoolValue(Truthy(raw)), nil
	default:
		doc, err := decodeJSON(raw)
		if err != nil {
			logctx.FromContext(ctx).Warn("Malformed JSON config value, decoding as null",
				slog.String("itemKey", key),
				slog.String("itemType", itemType),
				slog.Any("error", err))
			return JSONValue(nil), nil
		}
		return JSONValue(doc), nil
	}
}

var errTrailingJSON = errors.New("invalid character after top-level value")

// decodeJSON accepts exactly one JSON document, like json.Unmarshal.
func decodeJSON(raw string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		if err == nil {
			err = errTrailingJSON
		}
		return nil, err
	}
	return doc, nil
}

const (
	boolTrue  = "1"
	boolFalse = "0"
)

// Encode renders value as the text stored for itemType.
func Encode(itemType string, value any) (string, error) {
	kind, ok := ItemType(itemType).Kind()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownItemType, itemType)
	}
	if v, isValue := value.(Value); isValue {
		value = v.Interface()
	}

	switch kind {
	case KindString:
		return encodeString(value), nil
	case KindBool:
		if encodeBool(value) {
			return boolTrue, nil
		}
		return boolFalse, nil
	default:
		return encodeJSON(value)
	}
}

func encodeString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func encodeBool(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return Truthy(v)
	default:
		return Truthy(fmt.Sprint(v))
	}
}

// encodeJSON writes an operator friendly document: indented, with slashes
// and non-ASCII characters left as-is.
func encodeJSON(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(value); err != nil {
		return "", fmt.Errorf("failed to encode json config value: %w", err)
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}
