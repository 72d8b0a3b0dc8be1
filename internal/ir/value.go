package ir

import (
	"encoding/json"
	"fmt"
	"slices"
	"unicode/utf16"
)

// Value is a sealed interface for the literal content a lexer may attach
// to a bound sub-evidence fragment (spec §6 BindKind): the substring or
// parsed scalar the variable actually captured, as opposed to its mere
// position. Only the types below implement it.
//
// This is a supplement beyond spec §3's bare {variable_id, event_data}
// event item: a markup writer or CLI consumer usually wants the captured
// text, not just its coordinates.
type Value interface {
	irValue()
}

// NullValue represents an explicitly-absent captured value.
type NullValue struct{}

func (NullValue) irValue() {}

// StringValue is a captured substring (the common case: BindKind "text").
type StringValue string

func (StringValue) irValue() {}

// IntValue is a captured integer (BindKind "int", e.g. a parsed numeral).
type IntValue int64

func (IntValue) irValue() {}

// BoolValue is a captured boolean (BindKind "bool").
type BoolValue bool

func (BoolValue) irValue() {}

// ArrayValue is an ordered list of captured values.
type ArrayValue []Value

func (ArrayValue) irValue() {}

// ObjectValue is a map of named captured values, for structured BindKinds.
type ObjectValue map[string]Value

func (ObjectValue) irValue() {}

// SortedKeys returns ObjectValue keys ordered per RFC 8785 (UTF-16 code
// unit order), so canonical hashing and golden-file diffs are stable
// regardless of Go map iteration order.
func (obj ObjectValue) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings by UTF-16 code unit, as required by
// RFC 8785 canonical JSON. Go's default string compare is UTF-8 byte
// order, which disagrees with RFC 8785 on astral-plane characters.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// MarshalJSON implements json.Marshaler for ObjectValue with RFC 8785
// key ordering, for stable CLI and golden-fixture output.
func (obj ObjectValue) MarshalJSON() ([]byte, error) {
	keys := obj.SortedKeys()
	parts := make(map[string]json.RawMessage, len(keys))
	order := make([]string, 0, len(keys))
	for _, k := range keys {
		raw, err := json.Marshal(obj[k])
		if err != nil {
			return nil, fmt.Errorf("ObjectValue key %q: %w", k, err)
		}
		parts[k] = raw
		order = append(order, k)
	}
	return marshalOrderedObject(order, parts)
}

func marshalOrderedObject(order []string, parts map[string]json.RawMessage) ([]byte, error) {
	buf := make([]byte, 0, 64)
	buf = append(buf, '{')
	for i, k := range order {
		if i > 0 {
			buf = append(buf, ',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, keyBytes...)
		buf = append(buf, ':')
		buf = append(buf, parts[k]...)
	}
	buf = append(buf, '}')
	return buf, nil
}
