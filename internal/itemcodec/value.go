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

// Package itemcodec converts configuration values between their typed form
// and the text stored in the item_value column.
package itemcodec

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind identifies which member of a Value is populated.
type Kind uint8

const (
	KindString Kind = iota + 1
	KindBool
	KindJSON
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindJSON:
		return "json"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a decoded configuration value. Exactly one of the string, bool
// or JSON members is meaningful, selected by Kind.
type Value struct {
	kind Kind
	str  string
	b    bool
	doc  any
}

func StringValue(s string) Value { return Value{kind: KindString, str: s} }

func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// JSONValue wraps an already decoded JSON document (map[string]any, []any,
// string, json.Number, bool or nil). Decode produces json.Number for every
// number; float64 is accepted too.
func JSONValue(doc any) Value { return Value{kind: KindJSON, doc: doc} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// AsJSON returns the decoded document. A JSON value whose stored text was
// malformed returns (nil, true).
func (v Value) AsJSON() (any, bool) {
	return v.doc, v.kind == KindJSON
}

// Interface returns the logical value as a plain Go value.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindBool:
		return v.b
	case KindJSON:
		return v.doc
	default:
		return nil
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// MarshalYAML lets yaml.v3 render the logical value.
func (v Value) MarshalYAML() (any, error) {
	return yamlNumbers(v.Interface()), nil
}

// yamlNumbers rewrites json.Number leaves as numeric scalars; yaml.v3
// would otherwise quote them as strings.
func yamlNumbers(doc any) any {
	switch t := doc.(type) {
	case json.Number:
		tag := "!!int"
		if strings.ContainsAny(t.String(), ".eE") {
			tag = "!!float"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: t.String()}
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = yamlNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = yamlNumbers(e)
		}
		return out
	default:
		return doc
	}
}
