package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a deterministic JSON encoding of v: object
// keys sorted by RFC 8785 (UTF-16) order, strings NFC-normalized, and no
// HTML escaping. This is the ONLY serialization used for content
// fingerprints (ProgramFingerprint, ResultFingerprint) and for golden
// snapshots, so the same logical value always produces the same bytes
// regardless of Go map iteration order.
//
// Unlike the canonical-JSON discipline in systems that forbid floats and
// null, this engine's domain genuinely needs both: variable weights are
// floats (spec §4.6 attach_variable) and absent fields are nil. Both are
// accepted here.
func MarshalCanonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("ir: canonical marshal: %w", err)
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("ir: canonical remarshal: %w", err)
	}
	var buf []byte
	buf, err = appendCanonical(buf, generic)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func appendCanonical(buf []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return append(buf, "null"...), nil
	case bool:
		if val {
			return append(buf, "true"...), nil
		}
		return append(buf, "false"...), nil
	case string:
		return appendCanonicalString(buf, val)
	case json.Number:
		return append(buf, val.String()...), nil
	case float64:
		return append(buf, []byte(fmt.Sprintf("%g", val))...), nil
	case []any:
		buf = append(buf, '[')
		for i, elem := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendCanonical(buf, elem)
			if err != nil {
				return nil, err
			}
		}
		return append(buf, ']'), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return compareKeysRFC8785(keys[i], keys[j]) < 0 })
		buf = append(buf, '{')
		for i, k := range keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			buf, err = appendCanonicalString(buf, k)
			if err != nil {
				return nil, err
			}
			buf = append(buf, ':')
			buf, err = appendCanonical(buf, val[k])
			if err != nil {
				return nil, err
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("ir: unsupported type for canonical JSON: %T", v)
	}
}

func appendCanonicalString(buf []byte, s string) ([]byte, error) {
	normalized := norm.NFC.String(s)
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	// Encode appends a trailing newline; strip it.
	return append(buf, bytes.TrimRight(out.Bytes(), "\n")...), nil
}
